// Package memory holds in-memory store implementations, used by tests and
// available as a mongo-free backend for local development.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]store.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]store.User),
	}
}

func (s *UserStore) Create(ctx context.Context, req store.CreateUserRequest) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == req.Email {
			return store.User{}, ierr.New(ierr.ErrorCodeAlreadyExists,
				errors.New("user with this email already exists"))
		}
	}

	user := store.User{
		ID:        gonanoid.Must(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user

	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
	}

	return user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}

	return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
}

func (s *UserStore) List(ctx context.Context, excludeID string) ([]store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]store.User, 0, len(s.users))
	for _, user := range s.users {
		if user.ID == excludeID {
			continue
		}

		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].FullName < users[j].FullName
	})

	return users, nil
}

func (s *UserStore) Update(ctx context.Context, id string, req store.UpdateUserRequest) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return store.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.ProfilePic != "" {
		user.ProfilePic = req.ProfilePic
	}
	s.users[id] = user

	return user, nil
}

type MessageStore struct {
	mu       sync.RWMutex
	messages map[string]store.Message
	users    *UserStore
}

func NewMessageStore(users *UserStore) *MessageStore {
	return &MessageStore{
		messages: make(map[string]store.Message),
		users:    users,
	}
}

func (s *MessageStore) Save(ctx context.Context, req store.SaveMessageRequest) (store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := store.Message{
		ID:         gonanoid.Must(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  time.Now(),
	}
	s.messages[message.ID] = message

	return message, nil
}

func (s *MessageStore) Conversation(ctx context.Context, userA, userB string) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]store.Message, 0)
	for _, message := range s.messages {
		if betweenUsers(message, userA, userB) {
			messages = append(messages, message)
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	for i := range messages {
		sender, err := s.users.FindByID(ctx, messages[i].SenderID)
		if err != nil {
			continue
		}

		ref := sender.Ref()
		messages[i].Sender = &ref
	}

	return messages, nil
}

func (s *MessageStore) FindByIDs(ctx context.Context, ids []string) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]store.Message, 0, len(ids))
	for _, id := range ids {
		if message, ok := s.messages[id]; ok {
			messages = append(messages, message)
		}
	}

	return messages, nil
}

func (s *MessageStore) DeleteByIDs(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.messages, id)
	}

	return nil
}

func (s *MessageStore) DeleteConversation(ctx context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, message := range s.messages {
		if betweenUsers(message, userA, userB) {
			delete(s.messages, id)
		}
	}

	return nil
}

func betweenUsers(message store.Message, userA, userB string) bool {
	return (message.SenderID == userA && message.ReceiverID == userB) ||
		(message.SenderID == userB && message.ReceiverID == userA)
}

type AnnouncementStore struct {
	mu            sync.RWMutex
	announcements []store.Announcement
	users         *UserStore
}

func NewAnnouncementStore(users *UserStore) *AnnouncementStore {
	return &AnnouncementStore{
		users: users,
	}
}

func (s *AnnouncementStore) Create(ctx context.Context, req store.CreateAnnouncementRequest) (store.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := req.Files
	if files == nil {
		files = []string{}
	}

	announcement := store.Announcement{
		ID:        gonanoid.Must(),
		SenderID:  req.SenderID,
		Text:      req.Text,
		Files:     files,
		CreatedAt: time.Now(),
	}

	if sender, err := s.users.FindByID(ctx, req.SenderID); err == nil {
		ref := sender.Ref()
		announcement.Sender = &ref
	}

	s.announcements = append(s.announcements, announcement)

	return announcement, nil
}

func (s *AnnouncementStore) List(ctx context.Context) ([]store.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	announcements := make([]store.Announcement, len(s.announcements))
	copy(announcements, s.announcements)

	sort.SliceStable(announcements, func(i, j int) bool {
		return announcements[i].CreatedAt.After(announcements[j].CreatedAt)
	})

	return announcements, nil
}
