package realtime

import (
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/store"
)

// Notifier is the fan-out layer the REST handlers and the websocket event
// router invoke after a durable write. Every delivery is best-effort: a
// dropped push is never retried, the store remains authoritative.
type Notifier struct {
	logger   *zap.Logger
	registry *Registry
}

func NewNotifier(
	logger *zap.Logger,
	registry *Registry,
) *Notifier {
	return &Notifier{
		logger,
		registry,
	}
}

// NotifyNewMessage pushes the persisted message to the receiver, if the
// receiver is connected right now.
func (n *Notifier) NotifyNewMessage(message store.Message) {
	delivered := n.registry.SendToUser(message.ReceiverID, Event{
		Event: EventNewMessage,
		Data:  message,
	})

	if !delivered {
		n.logger.Debug("receiver offline, message will be fetched later",
			zap.String("receiverId", message.ReceiverID))
	}
}

// NotifyDeleted broadcasts the deleted ids to every connection, not just the
// conversation's parties: any client may be rendering those messages.
func (n *Notifier) NotifyDeleted(messageIds []string) {
	messageIds = compactIds(messageIds)
	if len(messageIds) == 0 {
		return
	}

	n.registry.Broadcast(Event{
		Event: EventMessagesDeleted,
		Data:  messageIds,
	})
}

// NotifyChatCleared tells both participants to drop their local copy of the
// conversation.
func (n *Notifier) NotifyChatCleared(userId, chatPartnerId string) {
	event := Event{
		Event: EventChatCleared,
		Data: ChatClearedPayload{
			UserId:        userId,
			ChatPartnerId: chatPartnerId,
		},
	}

	n.registry.SendToUser(chatPartnerId, event)
	if userId != chatPartnerId {
		n.registry.SendToUser(userId, event)
	}
}

// RelayDeleted handles the client-side deleteMessage event: the ids are
// rebroadcast to all connections under the same event name.
func (n *Notifier) RelayDeleted(messageIds []string) {
	messageIds = compactIds(messageIds)
	if len(messageIds) == 0 {
		return
	}

	n.registry.Broadcast(Event{
		Event: EventDeleteMessage,
		Data:  messageIds,
	})
}

// RelayClearChat handles the client-side clearChat event, forwarding it to
// both participants.
func (n *Notifier) RelayClearChat(senderId, receiverId string) {
	if senderId == "" || receiverId == "" {
		return
	}

	event := Event{
		Event: EventClearChat,
		Data: ClearChatPayload{
			SenderId:   senderId,
			ReceiverId: receiverId,
		},
	}

	n.registry.SendToUser(receiverId, event)
	if senderId != receiverId {
		n.registry.SendToUser(senderId, event)
	}
}

// compactIds drops empty ids instead of failing the whole event.
func compactIds(ids []string) []string {
	compacted := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}

		compacted = append(compacted, id)
	}

	return compacted
}
