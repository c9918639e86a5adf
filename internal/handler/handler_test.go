package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/auth"
	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/realtime"
	"github.com/Anuragsahu418/Educhat/internal/store"
	"github.com/Anuragsahu418/Educhat/internal/store/memory"
)

type testEnv struct {
	users         *memory.UserStore
	messages      *memory.MessageStore
	announcements *memory.AnnouncementStore
	registry      *realtime.Registry
	notifier      *realtime.Notifier

	authHandler         *AuthHandler
	messageHandler      *MessageHandler
	announcementHandler *AnnouncementHandler
}

func newTestEnv() *testEnv {
	users := memory.NewUserStore()
	messages := memory.NewMessageStore(users)
	announcements := memory.NewAnnouncementStore(users)
	registry := realtime.NewRegistry(zap.NewNop())
	notifier := realtime.NewNotifier(zap.NewNop(), registry)

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenIssuer("test-secret")

	return &testEnv{
		users:               users,
		messages:            messages,
		announcements:       announcements,
		registry:            registry,
		notifier:            notifier,
		authHandler:         NewAuthHandler(users, hasher, tokens),
		messageHandler:      NewMessageHandler(users, messages, notifier),
		announcementHandler: NewAnnouncementHandler(announcements),
	}
}

func (e *testEnv) signup(t *testing.T, fullName, email, role string) store.User {
	t.Helper()

	user, err := e.authHandler.Signup(context.Background(), SignupRequest{
		FullName: fullName,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	assert.NoError(t, err)

	return user
}

func assertCode(t *testing.T, err error, code ierr.ErrorCode) {
	t.Helper()

	var handlerErr ierr.Error
	assert.True(t, errors.As(err, &handlerErr), "expected an ierr.Error, got %v", err)
	assert.Equal(t, code, handlerErr.Code)
}

func userCtx(user store.User) context.Context {
	return auth.WithUser(context.Background(), user)
}

func TestSignup(t *testing.T) {
	env := newTestEnv()

	t.Run("defaults to student role", func(t *testing.T) {
		user := env.signup(t, "Alice", "alice@example.com", "")
		assert.Equal(t, store.RoleStudent, user.Role)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := env.authHandler.Signup(context.Background(), SignupRequest{
			Email:    "alice@example.com",
			Password: "password123",
		})
		assertCode(t, err, ierr.ErrorCodeAlreadyExists)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		_, err := env.authHandler.Signup(context.Background(), SignupRequest{
			Email:    "not-an-email",
			Password: "password123",
		})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		_, err := env.authHandler.Signup(context.Background(), SignupRequest{
			Email:    "admin@example.com",
			Password: "password123",
			Role:     "admin",
		})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "Alice", "alice@example.com", "")

	t.Run("valid credentials", func(t *testing.T) {
		user, token, err := env.authHandler.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "password123",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Alice", user.FullName)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.authHandler.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		})
		assertCode(t, err, ierr.ErrorCodeUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := env.authHandler.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		assertCode(t, err, ierr.ErrorCodeUnauthenticated)
	})
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv()
	alice := env.signup(t, "Alice", "alice@example.com", "")

	t.Run("updates the given fields", func(t *testing.T) {
		user, err := env.authHandler.UpdateProfile(userCtx(alice), UpdateProfileRequest{
			FullName: "Alice Cooper",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Alice Cooper", user.FullName)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("empty update leaves the profile unchanged", func(t *testing.T) {
		user, err := env.authHandler.UpdateProfile(userCtx(alice), UpdateProfileRequest{})
		assert.NoError(t, err)
		assert.Equal(t, "Alice Cooper", user.FullName)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		_, err := env.authHandler.UpdateProfile(userCtx(alice), UpdateProfileRequest{
			Email: "not-an-email",
		})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv()
	alice := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "")

	t.Run("requires authentication", func(t *testing.T) {
		_, err := env.messageHandler.Send(context.Background(), SendMessageRequest{
			ReceiverID: bob.ID,
			Text:       "hi",
		})
		assertCode(t, err, ierr.ErrorCodeUnauthenticated)
	})

	t.Run("requires text or image", func(t *testing.T) {
		_, err := env.messageHandler.Send(userCtx(alice), SendMessageRequest{
			ReceiverID: bob.ID,
		})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		_, err := env.messageHandler.Send(userCtx(alice), SendMessageRequest{
			ReceiverID: "missing",
			Text:       "hi",
		})
		assertCode(t, err, ierr.ErrorCodeNotFound)
	})

	t.Run("persists and pushes to the online receiver", func(t *testing.T) {
		connection := realtime.NewConnection()
		env.registry.Add(connection)
		env.registry.Identify(connection, bob.ID)
		for len(connection.Send) > 0 {
			<-connection.Send
		}

		message, err := env.messageHandler.Send(userCtx(alice), SendMessageRequest{
			ReceiverID: bob.ID,
			Text:       "hello bob",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, message.ID)
		assert.Equal(t, alice.ID, message.SenderID)
		assert.NotNil(t, message.Sender)
		assert.Equal(t, "Alice", message.Sender.FullName)

		event := <-connection.Send
		assert.Equal(t, realtime.EventNewMessage, event.Event)
		assert.Equal(t, message, event.Data)

		history, err := env.messageHandler.Conversation(userCtx(bob), alice.ID)
		assert.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Equal(t, "hello bob", history[0].Text)
	})
}

func TestDeleteMessages(t *testing.T) {
	env := newTestEnv()
	alice := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "")

	message, err := env.messageHandler.Send(userCtx(alice), SendMessageRequest{
		ReceiverID: bob.ID,
		Text:       "delete me",
	})
	assert.NoError(t, err)

	t.Run("ids are required", func(t *testing.T) {
		err := env.messageHandler.Delete(userCtx(alice), DeleteMessagesRequest{})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})

	t.Run("only the sender may delete", func(t *testing.T) {
		err := env.messageHandler.Delete(userCtx(bob), DeleteMessagesRequest{
			Ids: []string{message.ID},
		})
		assertCode(t, err, ierr.ErrorCodePermissionDenied)
	})

	t.Run("unknown ids delete nothing", func(t *testing.T) {
		err := env.messageHandler.Delete(userCtx(alice), DeleteMessagesRequest{
			Ids: []string{message.ID, "missing"},
		})
		assertCode(t, err, ierr.ErrorCodeNotFound)

		history, err := env.messageHandler.Conversation(userCtx(alice), bob.ID)
		assert.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("deletion is broadcast to all connections", func(t *testing.T) {
		bystander := realtime.NewConnection()
		env.registry.Add(bystander)

		err := env.messageHandler.Delete(userCtx(alice), DeleteMessagesRequest{
			Ids: []string{message.ID},
		})
		assert.NoError(t, err)

		event := <-bystander.Send
		assert.Equal(t, realtime.EventMessagesDeleted, event.Event)
		assert.Equal(t, []string{message.ID}, event.Data)

		history, err := env.messageHandler.Conversation(userCtx(alice), bob.ID)
		assert.NoError(t, err)
		assert.Len(t, history, 0)
	})
}

func TestClearChat(t *testing.T) {
	env := newTestEnv()
	alice := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "")

	_, err := env.messageHandler.Send(userCtx(alice), SendMessageRequest{ReceiverID: bob.ID, Text: "one"})
	assert.NoError(t, err)
	_, err = env.messageHandler.Send(userCtx(bob), SendMessageRequest{ReceiverID: alice.ID, Text: "two"})
	assert.NoError(t, err)

	bobConn := realtime.NewConnection()
	env.registry.Add(bobConn)
	env.registry.Identify(bobConn, bob.ID)
	for len(bobConn.Send) > 0 {
		<-bobConn.Send
	}

	err = env.messageHandler.ClearChat(userCtx(alice), bob.ID)
	assert.NoError(t, err)

	event := <-bobConn.Send
	assert.Equal(t, realtime.EventChatCleared, event.Event)
	assert.Equal(t, realtime.ChatClearedPayload{
		UserId:        alice.ID,
		ChatPartnerId: bob.ID,
	}, event.Data)

	history, err := env.messageHandler.Conversation(userCtx(alice), bob.ID)
	assert.NoError(t, err)
	assert.Len(t, history, 0)
}

func TestAnnouncements(t *testing.T) {
	env := newTestEnv()
	student := env.signup(t, "Student", "student@example.com", "")
	teacher := env.signup(t, "Teacher", "teacher@example.com", "teacher")

	t.Run("students may not announce", func(t *testing.T) {
		_, err := env.announcementHandler.Create(userCtx(student), CreateAnnouncementRequest{
			Text: "hello class",
		})
		assertCode(t, err, ierr.ErrorCodePermissionDenied)
	})

	t.Run("text or files required", func(t *testing.T) {
		_, err := env.announcementHandler.Create(userCtx(teacher), CreateAnnouncementRequest{})
		assertCode(t, err, ierr.ErrorCodeInvalidArgument)
	})

	t.Run("teacher announces and everyone can list", func(t *testing.T) {
		created, err := env.announcementHandler.Create(userCtx(teacher), CreateAnnouncementRequest{
			Text:  "exam on friday",
			Files: []string{"/uploads/syllabus.pdf"},
		})
		assert.NoError(t, err)
		assert.NotNil(t, created.Sender)
		assert.Equal(t, "Teacher", created.Sender.FullName)

		announcements, err := env.announcementHandler.List(userCtx(student))
		assert.NoError(t, err)
		assert.Len(t, announcements, 1)
		assert.Equal(t, "exam on friday", announcements[0].Text)
	})
}

func TestListUsers(t *testing.T) {
	env := newTestEnv()
	alice := env.signup(t, "Alice", "alice@example.com", "")
	env.signup(t, "Bob", "bob@example.com", "")

	users, err := env.messageHandler.ListUsers(userCtx(alice))
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].FullName)
}
