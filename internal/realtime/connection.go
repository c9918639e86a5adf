package realtime

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const sendBufferSize = 32

// Connection is one live realtime session. It has no identity of its own
// until the client sends a setUser event.
type Connection struct {
	Id   string
	Send chan Event
}

func NewConnection() *Connection {
	return &Connection{
		Id:   gonanoid.Must(),
		Send: make(chan Event, sendBufferSize),
	}
}

// push enqueues the event without blocking. It reports false when the
// connection's buffer is full; the caller decides whether that matters.
// Only the Registry may call this, under its lock, so a push can never race
// a close of the Send channel.
func (c *Connection) push(event Event) bool {
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}
