package handler

import (
	"context"
	"errors"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/metrics"
	"github.com/Anuragsahu418/Educhat/internal/realtime"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

type SendMessageRequest struct {
	ReceiverID string
	Text       string
	Image      string
}

type DeleteMessagesRequest struct {
	Ids []string `json:"ids"`
}

type MessageHandler struct {
	users    store.UserStore
	messages store.MessageStore
	notifier *realtime.Notifier
}

func NewMessageHandler(
	users store.UserStore,
	messages store.MessageStore,
	notifier *realtime.Notifier,
) *MessageHandler {
	return &MessageHandler{
		users:    users,
		messages: messages,
		notifier: notifier,
	}
}

// ListUsers returns every other user for the sidebar.
func (h *MessageHandler) ListUsers(ctx context.Context) ([]store.UserRef, error) {
	user, err := authUser(ctx)
	if err != nil {
		return nil, err
	}

	users, err := h.users.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	refs := make([]store.UserRef, len(users))
	for i, u := range users {
		refs[i] = u.Ref()
	}

	return refs, nil
}

// Conversation returns the two-way message history with the given user,
// oldest first.
func (h *MessageHandler) Conversation(ctx context.Context, partnerId string) ([]store.Message, error) {
	user, err := authUser(ctx)
	if err != nil {
		return nil, err
	}

	return h.messages.Conversation(ctx, user.ID, partnerId)
}

// Send persists the message and then pushes it to the receiver if they are
// online. Delivery is best-effort; the stored message is the source of
// truth either way.
func (h *MessageHandler) Send(ctx context.Context, req SendMessageRequest) (store.Message, error) {
	user, err := authUser(ctx)
	if err != nil {
		return store.Message{}, err
	}

	if req.Text == "" && req.Image == "" {
		return store.Message{}, ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("message must have text or an image"))
	}

	_, err = h.users.FindByID(ctx, req.ReceiverID)
	if err != nil {
		return store.Message{}, err
	}

	message, err := h.messages.Save(ctx, store.SaveMessageRequest{
		SenderID:   user.ID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Image:      req.Image,
	})
	if err != nil {
		return store.Message{}, err
	}

	metrics.MessagesPersistedTotal.Inc()

	message.Sender = &store.UserRef{
		ID:         user.ID,
		FullName:   user.FullName,
		ProfilePic: user.ProfilePic,
	}

	h.notifier.NotifyNewMessage(message)

	return message, nil
}

// Delete removes the given messages. Only the sender of every message may
// delete; the deletion is then broadcast to all connections.
func (h *MessageHandler) Delete(ctx context.Context, req DeleteMessagesRequest) error {
	user, err := authUser(ctx)
	if err != nil {
		return err
	}

	if len(req.Ids) == 0 {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("message ids are required"))
	}

	messages, err := h.messages.FindByIDs(ctx, req.Ids)
	if err != nil {
		return err
	}

	if len(messages) != len(req.Ids) {
		return ierr.New(ierr.ErrorCodeNotFound, errors.New("one or more messages not found"))
	}

	for _, message := range messages {
		if message.SenderID != user.ID {
			return ierr.New(ierr.ErrorCodePermissionDenied,
				errors.New("unauthorized to delete some messages"))
		}
	}

	deletedIds := make([]string, len(messages))
	for i, message := range messages {
		deletedIds[i] = message.ID
	}

	err = h.messages.DeleteByIDs(ctx, deletedIds)
	if err != nil {
		return err
	}

	h.notifier.NotifyDeleted(deletedIds)

	return nil
}

// ClearChat wipes the conversation with the given user and notifies both
// participants.
func (h *MessageHandler) ClearChat(ctx context.Context, partnerId string) error {
	user, err := authUser(ctx)
	if err != nil {
		return err
	}

	err = h.messages.DeleteConversation(ctx, user.ID, partnerId)
	if err != nil {
		return err
	}

	h.notifier.NotifyChatCleared(user.ID, partnerId)

	return nil
}
