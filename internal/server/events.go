package server

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/realtime"
)

// EventRouter dispatches inbound websocket events. Malformed payloads are
// logged and ignored; a bad frame never takes the connection down.
type EventRouter struct {
	logger   *zap.Logger
	registry *realtime.Registry
	notifier *realtime.Notifier
}

func NewEventRouter(
	logger *zap.Logger,
	registry *realtime.Registry,
	notifier *realtime.Notifier,
) *EventRouter {
	return &EventRouter{
		logger,
		registry,
		notifier,
	}
}

func (r *EventRouter) Handle(connection *realtime.Connection, event string, data json.RawMessage) {
	switch event {
	case realtime.EventSetUser:
		var userId string
		if err := json.Unmarshal(data, &userId); err != nil || userId == "" {
			r.logger.Debug("ignoring malformed setUser event",
				zap.String("connectionId", connection.Id))
			return
		}

		r.registry.Identify(connection, userId)

	case realtime.EventDeleteMessage:
		var messageIds []string
		if err := json.Unmarshal(data, &messageIds); err != nil {
			r.logger.Debug("ignoring malformed deleteMessage event",
				zap.String("connectionId", connection.Id))
			return
		}

		r.notifier.RelayDeleted(messageIds)

	case realtime.EventClearChat:
		var payload realtime.ClearChatPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			r.logger.Debug("ignoring malformed clearChat event",
				zap.String("connectionId", connection.Id))
			return
		}

		r.notifier.RelayClearChat(payload.SenderId, payload.ReceiverId)

	default:
		r.logger.Debug("unknown event",
			zap.String("event", event),
			zap.String("connectionId", connection.Id))
	}
}
