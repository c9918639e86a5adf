package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

type userDocument struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	FullName   string        `bson:"fullName"`
	Email      string        `bson:"email"`
	Password   string        `bson:"password"`
	ProfilePic string        `bson:"profilePic"`
	Role       string        `bson:"role"`
	CreatedAt  time.Time     `bson:"createdAt"`
}

func (d userDocument) toUser() store.User {
	return store.User{
		ID:         d.ID.Hex(),
		FullName:   d.FullName,
		Email:      d.Email,
		Password:   d.Password,
		ProfilePic: d.ProfilePic,
		Role:       store.Role(d.Role),
		CreatedAt:  d.CreatedAt,
	}
}

type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(database *mongo.Database) *UserStore {
	return &UserStore{
		collection: database.Collection("users"),
	}
}

func (s *UserStore) Setup(ctx context.Context) error {
	emailIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := s.collection.Indexes().CreateOne(ctx, emailIndexModel)

	return err
}

func (s *UserStore) Create(ctx context.Context, req store.CreateUserRequest) (store.User, error) {
	createdAt := time.Now()

	result, err := s.collection.InsertOne(ctx, bson.D{
		{Key: "fullName", Value: req.FullName},
		{Key: "email", Value: req.Email},
		{Key: "password", Value: req.Password},
		{Key: "profilePic", Value: ""},
		{Key: "role", Value: string(req.Role)},
		{Key: "createdAt", Value: createdAt},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.User{}, ierr.New(ierr.ErrorCodeAlreadyExists,
				errors.New("user with this email already exists"))
		}

		return store.User{}, err
	}

	return store.User{
		ID:        result.InsertedID.(bson.ObjectID).Hex(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: createdAt,
	}, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (store.User, error) {
	objectId, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return store.User{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid user id"))
	}

	var document userDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": objectId}).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
		}

		return store.User{}, err
	}

	return document.toUser(), nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (store.User, error) {
	var document userDocument
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
		}

		return store.User{}, err
	}

	return document.toUser(), nil
}

func (s *UserStore) List(ctx context.Context, excludeID string) ([]store.User, error) {
	filter := bson.M{}
	if excludeID != "" {
		excludeObjectId, err := bson.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid user id"))
		}

		filter["_id"] = bson.M{"$ne": excludeObjectId}
	}

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})

	result, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var documents []userDocument
	err = result.All(ctx, &documents)
	if err != nil {
		return nil, err
	}

	users := make([]store.User, len(documents))
	for i, document := range documents {
		users[i] = document.toUser()
	}

	return users, nil
}

func (s *UserStore) Update(ctx context.Context, id string, req store.UpdateUserRequest) (store.User, error) {
	objectId, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return store.User{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid user id"))
	}

	update := bson.M{}
	if req.FullName != "" {
		update["fullName"] = req.FullName
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.ProfilePic != "" {
		update["profilePic"] = req.ProfilePic
	}

	// An empty $set is rejected by the server.
	if len(update) == 0 {
		return s.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var document userDocument
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectId}, bson.M{"$set": update}, opts).
		Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
		}
		if mongo.IsDuplicateKeyError(err) {
			return store.User{}, ierr.New(ierr.ErrorCodeAlreadyExists,
				errors.New("user with this email already exists"))
		}

		return store.User{}, err
	}

	return document.toUser(), nil
}
