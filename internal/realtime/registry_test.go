package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func receiveEvent(t *testing.T, connection *Connection) Event {
	t.Helper()

	select {
	case event := <-connection.Send:
		return event
	default:
		t.Fatal("expected an event but none was queued")
		return Event{}
	}
}

func drain(connection *Connection) {
	for {
		select {
		case <-connection.Send:
		default:
			return
		}
	}
}

func TestRegistryPresence(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	c1 := NewConnection()
	registry.Add(c1)

	t.Run("identify broadcasts the online set", func(t *testing.T) {
		registry.Identify(c1, "u1")

		event := receiveEvent(t, c1)
		assert.Equal(t, EventOnlineUsers, event.Event)

		payload := event.Data.(PresencePayload)
		assert.Equal(t, 1, payload.Count)
		assert.Equal(t, []string{"u1"}, payload.UserIds)
	})

	c2 := NewConnection()
	registry.Add(c2)

	t.Run("second identify reaches every connection", func(t *testing.T) {
		registry.Identify(c2, "u2")

		for _, connection := range []*Connection{c1, c2} {
			event := receiveEvent(t, connection)
			payload := event.Data.(PresencePayload)
			assert.Equal(t, 2, payload.Count)
			assert.Equal(t, []string{"u1", "u2"}, payload.UserIds)
		}
	})

	t.Run("remove broadcasts the shrunken set and closes the channel", func(t *testing.T) {
		registry.Remove(c2)

		event := receiveEvent(t, c1)
		payload := event.Data.(PresencePayload)
		assert.Equal(t, 1, payload.Count)
		assert.Equal(t, []string{"u1"}, payload.UserIds)

		_, open := <-c2.Send
		assert.False(t, open)
	})
}

func TestRegistryLastConnectWins(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	c1 := NewConnection()
	c2 := NewConnection()
	registry.Add(c1)
	registry.Add(c2)

	registry.Identify(c1, "u1")
	registry.Identify(c2, "u1")

	current, ok := registry.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, c2.Id, current.Id)

	drain(c1)
	drain(c2)

	// c1's entry was orphaned by c2's identify, so forgetting it must not
	// change presence or produce a broadcast.
	registry.Forget(c1)

	payload := registry.OnlineUsers()
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, []string{"u1"}, payload.UserIds)

	assert.Len(t, c1.Send, 0)
	assert.Len(t, c2.Send, 0)
}

func TestRegistryForgetUnknownConnection(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	connection := NewConnection()
	registry.Add(connection)

	// Never identified: forget is a no-op, not an error.
	registry.Forget(connection)

	assert.Equal(t, 0, registry.OnlineUsers().Count)
	assert.Len(t, connection.Send, 0)
}

func TestRegistryIdentifySwitchesUser(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	connection := NewConnection()
	registry.Add(connection)

	registry.Identify(connection, "u1")
	registry.Identify(connection, "u2")

	_, ok := registry.Lookup("u1")
	assert.False(t, ok)

	current, ok := registry.Lookup("u2")
	assert.True(t, ok)
	assert.Equal(t, connection.Id, current.Id)

	payload := registry.OnlineUsers()
	assert.Equal(t, []string{"u2"}, payload.UserIds)
}

func TestRegistryBroadcastReachesUnidentifiedConnections(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	identified := NewConnection()
	anonymous := NewConnection()
	registry.Add(identified)
	registry.Add(anonymous)
	registry.Identify(identified, "u1")

	drain(identified)
	drain(anonymous)

	registry.Broadcast(Event{Event: EventMessagesDeleted, Data: []string{"m1"}})

	for _, connection := range []*Connection{identified, anonymous} {
		event := receiveEvent(t, connection)
		assert.Equal(t, EventMessagesDeleted, event.Event)
		assert.Equal(t, []string{"m1"}, event.Data)
	}
}

func TestRegistryBufferFullDropsEvent(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	connection := NewConnection()
	registry.Add(connection)
	registry.Identify(connection, "u1")

	for i := 0; i < sendBufferSize*2; i++ {
		registry.Broadcast(Event{Event: EventMessagesDeleted, Data: []string{"m"}})
	}

	// The drops must not have disturbed the registry.
	_, ok := registry.Lookup("u1")
	assert.True(t, ok)
	assert.Len(t, connection.Send, sendBufferSize)
}
