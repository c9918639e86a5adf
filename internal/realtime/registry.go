package realtime

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/metrics"
)

// Registry owns the mapping between user identities and their live
// connection. At most one connection represents a user at any time; a later
// setUser for the same user silently orphans the earlier connection's entry.
// It also tracks every open connection, identified or not, because presence
// and deletion events go to all of them.
type Registry struct {
	logger *zap.Logger
	mu     sync.RWMutex

	connections map[string]*Connection
	userByConn  map[string]string
	connByUser  map[string]*Connection
}

func NewRegistry(
	logger *zap.Logger,
) *Registry {
	return &Registry{
		logger:      logger,
		connections: make(map[string]*Connection),
		userByConn:  make(map[string]string),
		connByUser:  make(map[string]*Connection),
	}
}

// Add starts tracking a freshly upgraded connection. No presence broadcast
// happens until the connection identifies itself.
func (r *Registry) Add(connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connection.Id] = connection

	metrics.WebSocketConnectionsActive.Inc()
	metrics.WebSocketConnectionsTotal.Inc()
}

// Identify associates the connection with a user identity, replacing any
// prior association for either side, and broadcasts the new online set.
func (r *Registry) Identify(connection *Connection, userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[connection.Id]; !ok {
		// Disconnected between upgrade and setUser.
		return
	}

	// A connection represents at most one user.
	if prevUserId, ok := r.userByConn[connection.Id]; ok && prevUserId != userId {
		if prev, ok := r.connByUser[prevUserId]; ok && prev.Id == connection.Id {
			delete(r.connByUser, prevUserId)
		}
	}

	// Last connect wins: the earlier connection's entry is orphaned without
	// notifying it.
	if prev, ok := r.connByUser[userId]; ok && prev.Id != connection.Id {
		delete(r.userByConn, prev.Id)
	}

	r.connByUser[userId] = connection
	r.userByConn[connection.Id] = userId

	r.logger.Debug("connection identified",
		zap.String("connectionId", connection.Id),
		zap.String("userId", userId))

	r.broadcastPresenceLocked()
}

// Forget removes the identity entry owned by the connection, if any. It is
// a no-op for connections that never identified or were orphaned by a later
// setUser for the same user.
func (r *Registry) Forget(connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.forgetLocked(connection) {
		r.broadcastPresenceLocked()
	}
}

// Remove stops tracking the connection entirely and closes its send
// channel. Called exactly once, when the transport goes away.
func (r *Registry) Remove(connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[connection.Id]; !ok {
		return
	}

	removed := r.forgetLocked(connection)

	delete(r.connections, connection.Id)
	close(connection.Send)

	metrics.WebSocketConnectionsActive.Dec()

	if removed {
		r.broadcastPresenceLocked()
	}
}

func (r *Registry) forgetLocked(connection *Connection) bool {
	userId, ok := r.userByConn[connection.Id]
	if !ok {
		return false
	}

	delete(r.userByConn, connection.Id)

	if current, ok := r.connByUser[userId]; ok && current.Id == connection.Id {
		delete(r.connByUser, userId)
	}

	return true
}

// Lookup returns the live connection for a user, if any.
func (r *Registry) Lookup(userId string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connection, ok := r.connByUser[userId]

	return connection, ok
}

// OnlineUsers reports the current online set, sorted for stable output.
func (r *Registry) OnlineUsers() PresencePayload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.onlineUsersLocked()
}

func (r *Registry) onlineUsersLocked() PresencePayload {
	userIds := make([]string, 0, len(r.connByUser))
	for userId := range r.connByUser {
		userIds = append(userIds, userId)
	}
	sort.Strings(userIds)

	return PresencePayload{
		Count:   len(userIds),
		UserIds: userIds,
	}
}

// Broadcast delivers the event to every open connection. A connection that
// cannot accept it is skipped; it will resynchronize from the store on its
// next fetch.
func (r *Registry) Broadcast(event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.broadcastLocked(event)
}

func (r *Registry) broadcastLocked(event Event) {
	for _, connection := range r.connections {
		r.pushLocked(connection, event)
	}
}

// SendToUser delivers the event to the user's connection, if one is
// registered. Absence is not an error.
func (r *Registry) SendToUser(userId string, event Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connection, ok := r.connByUser[userId]
	if !ok {
		return false
	}

	return r.pushLocked(connection, event)
}

func (r *Registry) broadcastPresenceLocked() {
	payload := r.onlineUsersLocked()

	r.broadcastLocked(Event{
		Event: EventOnlineUsers,
		Data:  payload,
	})
}

func (r *Registry) pushLocked(connection *Connection, event Event) bool {
	if connection.push(event) {
		metrics.EventsDeliveredTotal.WithLabelValues(event.Event).Inc()

		return true
	}

	r.logger.Warn("connection send buffer full, dropping event",
		zap.String("connectionId", connection.Id),
		zap.String("event", event.Event))
	metrics.EventsDroppedTotal.WithLabelValues(event.Event).Inc()

	return false
}
