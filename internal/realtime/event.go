package realtime

// Wire event names. Existing clients match on these strings, so they are
// fixed.
const (
	EventSetUser         = "setUser"
	EventOnlineUsers     = "onlineUsers"
	EventNewMessage      = "newMessage"
	EventDeleteMessage   = "deleteMessage"
	EventMessagesDeleted = "messagesDeleted"
	EventClearChat       = "clearChat"
	EventChatCleared     = "chatCleared"
)

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type PresencePayload struct {
	Count   int      `json:"count"`
	UserIds []string `json:"userIds"`
}

// ClearChatPayload is the client-relayed variant of a chat wipe.
type ClearChatPayload struct {
	SenderId   string `json:"senderId"`
	ReceiverId string `json:"receiverId"`
}

// ChatClearedPayload is emitted after the REST layer deletes a conversation.
type ChatClearedPayload struct {
	UserId        string `json:"userId"`
	ChatPartnerId string `json:"chatPartnerId"`
}
