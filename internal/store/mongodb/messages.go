package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Anuragsahu418/Educhat/internal/store"
)

type messageDocument struct {
	ID         bson.ObjectID `bson:"_id"`
	SenderID   string        `bson:"senderId"`
	ReceiverID string        `bson:"receiverId"`
	Text       string        `bson:"text"`
	Image      string        `bson:"image"`
	CreatedAt  time.Time     `bson:"createdAt"`
}

func (d messageDocument) toMessage() store.Message {
	return store.Message{
		ID:         d.ID.Hex(),
		SenderID:   d.SenderID,
		ReceiverID: d.ReceiverID,
		Text:       d.Text,
		Image:      d.Image,
		CreatedAt:  d.CreatedAt,
	}
}

type MessageStore struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewMessageStore(database *mongo.Database) *MessageStore {
	return &MessageStore{
		collection: database.Collection("messages"),
		users:      database.Collection("users"),
	}
}

func (s *MessageStore) Setup(ctx context.Context) error {
	conversationIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "senderId", Value: 1},
			{Key: "receiverId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	}

	_, err := s.collection.Indexes().CreateOne(ctx, conversationIndexModel)

	return err
}

func (s *MessageStore) Save(ctx context.Context, req store.SaveMessageRequest) (store.Message, error) {
	createdAt := time.Now()

	result, err := s.collection.InsertOne(ctx, bson.D{
		{Key: "senderId", Value: req.SenderID},
		{Key: "receiverId", Value: req.ReceiverID},
		{Key: "text", Value: req.Text},
		{Key: "image", Value: req.Image},
		{Key: "createdAt", Value: createdAt},
	})
	if err != nil {
		return store.Message{}, err
	}

	return store.Message{
		ID:         result.InsertedID.(bson.ObjectID).Hex(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  createdAt,
	}, nil
}

func (s *MessageStore) Conversation(ctx context.Context, userA, userB string) ([]store.Message, error) {
	filter := conversationFilter(userA, userB)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	result, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var documents []messageDocument
	err = result.All(ctx, &documents)
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, len(documents))
	for i, document := range documents {
		messages[i] = document.toMessage()
	}

	return s.populateSenders(ctx, messages)
}

func (s *MessageStore) FindByIDs(ctx context.Context, ids []string) ([]store.Message, error) {
	objectIds := objectIdsFromHex(ids)
	if len(objectIds) == 0 {
		return nil, nil
	}

	result, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIds}})
	if err != nil {
		return nil, err
	}

	var documents []messageDocument
	err = result.All(ctx, &documents)
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, len(documents))
	for i, document := range documents {
		messages[i] = document.toMessage()
	}

	return messages, nil
}

func (s *MessageStore) DeleteByIDs(ctx context.Context, ids []string) error {
	objectIds := objectIdsFromHex(ids)
	if len(objectIds) == 0 {
		return nil
	}

	_, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objectIds}})

	return err
}

func (s *MessageStore) DeleteConversation(ctx context.Context, userA, userB string) error {
	_, err := s.collection.DeleteMany(ctx, conversationFilter(userA, userB))

	return err
}

func conversationFilter(userA, userB string) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"senderId": userA, "receiverId": userB},
			bson.M{"senderId": userB, "receiverId": userA},
		},
	}
}

// objectIdsFromHex converts ids, skipping malformed ones rather than failing
// the whole request.
func objectIdsFromHex(ids []string) []bson.ObjectID {
	objectIds := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectId, err := bson.ObjectIDFromHex(id)
		if err != nil {
			continue
		}

		objectIds = append(objectIds, objectId)
	}

	return objectIds
}

func (s *MessageStore) populateSenders(ctx context.Context, messages []store.Message) ([]store.Message, error) {
	senderIds := make([]bson.ObjectID, 0, len(messages))
	seen := make(map[string]struct{})
	for _, message := range messages {
		if _, ok := seen[message.SenderID]; ok {
			continue
		}
		seen[message.SenderID] = struct{}{}

		objectId, err := bson.ObjectIDFromHex(message.SenderID)
		if err != nil {
			continue
		}

		senderIds = append(senderIds, objectId)
	}

	if len(senderIds) == 0 {
		return messages, nil
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

	for i := range messages {
		if ref, ok := refs[messages[i].SenderID]; ok {
			messages[i].Sender = &ref
		}
	}

	return messages, nil
}
