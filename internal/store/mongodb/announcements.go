package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/store"
)

type announcementDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	SenderID  string        `bson:"senderId"`
	Text      string        `bson:"text"`
	Files     []string      `bson:"files"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d announcementDocument) toAnnouncement() store.Announcement {
	files := d.Files
	if files == nil {
		files = []string{}
	}

	return store.Announcement{
		ID:        d.ID.Hex(),
		SenderID:  d.SenderID,
		Text:      d.Text,
		Files:     files,
		CreatedAt: d.CreatedAt,
	}
}

type AnnouncementStore struct {
	logger     *zap.Logger
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewAnnouncementStore(logger *zap.Logger, database *mongo.Database) *AnnouncementStore {
	return &AnnouncementStore{
		logger:     logger,
		collection: database.Collection("announcements"),
		users:      database.Collection("users"),
	}
}

func (s *AnnouncementStore) Setup(ctx context.Context) error {
	createdAtIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}

	_, err := s.collection.Indexes().CreateOne(ctx, createdAtIndexModel)

	return err
}

func (s *AnnouncementStore) Create(ctx context.Context, req store.CreateAnnouncementRequest) (store.Announcement, error) {
	createdAt := time.Now()

	files := req.Files
	if files == nil {
		files = []string{}
	}

	result, err := s.collection.InsertOne(ctx, bson.D{
		{Key: "senderId", Value: req.SenderID},
		{Key: "text", Value: req.Text},
		{Key: "files", Value: files},
		{Key: "createdAt", Value: createdAt},
	})
	if err != nil {
		return store.Announcement{}, err
	}

	announcement := store.Announcement{
		ID:        result.InsertedID.(bson.ObjectID).Hex(),
		SenderID:  req.SenderID,
		Text:      req.Text,
		Files:     files,
		CreatedAt: createdAt,
	}

	// The announcement is already persisted; a failed sender lookup only
	// degrades the response.
	populated, err := s.populateSenders(ctx, []store.Announcement{announcement})
	if err != nil {
		s.logger.Warn("failed to populate announcement sender",
			zap.String("announcementId", announcement.ID),
			zap.Error(err))

		return announcement, nil
	}

	return populated[0], nil
}

func (s *AnnouncementStore) List(ctx context.Context) ([]store.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	result, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var documents []announcementDocument
	err = result.All(ctx, &documents)
	if err != nil {
		return nil, err
	}

	announcements := make([]store.Announcement, len(documents))
	for i, document := range documents {
		announcements[i] = document.toAnnouncement()
	}

	return s.populateSenders(ctx, announcements)
}

func (s *AnnouncementStore) populateSenders(ctx context.Context, announcements []store.Announcement) ([]store.Announcement, error) {
	senderIds := make([]bson.ObjectID, 0, len(announcements))
	seen := make(map[string]struct{})
	for _, announcement := range announcements {
		if _, ok := seen[announcement.SenderID]; ok {
			continue
		}
		seen[announcement.SenderID] = struct{}{}

		objectId, err := bson.ObjectIDFromHex(announcement.SenderID)
		if err != nil {
			continue
		}

		senderIds = append(senderIds, objectId)
	}

	if len(senderIds) == 0 {
		return announcements, nil
	}

	result, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": senderIds}})
	if err != nil {
		return nil, err
	}

	var documents []userDocument
	err = result.All(ctx, &documents)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]store.UserRef, len(documents))
	for _, document := range documents {
		refs[document.ID.Hex()] = document.toUser().Ref()
	}

	for i := range announcements {
		if ref, ok := refs[announcements[i].SenderID]; ok {
			announcements[i].Sender = &ref
		}
	}

	return announcements, nil
}
