package store

import (
	"context"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanAnnounce reports whether the role may publish announcements.
func (r Role) CanAnnounce() bool {
	return r == RoleTeacher || r == RoleAdmin
}

type User struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	ProfilePic string    `json:"profilePic"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRef is the subset of profile fields embedded alongside messages and
// announcements for rendering without a second fetch.
type UserRef struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

func (u User) Ref() UserRef {
	return UserRef{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}

type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`
	Sender     *UserRef  `json:"sender,omitempty"`
}

type Announcement struct {
	ID        string    `json:"_id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    *UserRef  `json:"sender,omitempty"`
}

type CreateUserRequest struct {
	FullName string
	Email    string
	Password string
	Role     Role
}

type UpdateUserRequest struct {
	FullName   string
	Email      string
	ProfilePic string
}

type SaveMessageRequest struct {
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
}

type CreateAnnouncementRequest struct {
	SenderID string
	Text     string
	Files    []string
}

type UserStore interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, excludeID string) ([]User, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (User, error)
}

type MessageStore interface {
	Save(ctx context.Context, req SaveMessageRequest) (Message, error)
	Conversation(ctx context.Context, userA, userB string) ([]Message, error)
	FindByIDs(ctx context.Context, ids []string) ([]Message, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteConversation(ctx context.Context, userA, userB string) error
}

type AnnouncementStore interface {
	Create(ctx context.Context, req CreateAnnouncementRequest) (Announcement, error)
	List(ctx context.Context) ([]Announcement, error)
}
