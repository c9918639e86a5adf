package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	registry *realtime.Registry
	events   *EventRouter
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	registry *realtime.Registry,
	events *EventRouter,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		registry,
		events,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/ws", s.serve)
}

func (s *WebSocketServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := realtime.NewConnection()
	s.registry.Add(connection)

	s.logger.Info("websocket connection established",
		zap.String("connectionId", connection.Id))

	go s.writePump(conn, connection)
	s.readPump(conn, connection)

	s.logger.Info("websocket connection closed",
		zap.String("connectionId", connection.Id))
}

// readPump processes inbound frames until the transport dies, then removes
// the connection from the registry. Removal closes the send channel, which
// in turn stops the write pump.
func (s *WebSocketServer) readPump(conn *websocket.Conn, connection *realtime.Connection) {
	defer func() {
		s.registry.Remove(connection)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error",
					zap.String("connectionId", connection.Id),
					zap.Error(err))
			}
			return
		}

		var event wireEvent
		err = json.Unmarshal(raw, &event)
		if err != nil {
			s.logger.Debug("ignoring malformed frame",
				zap.String("connectionId", connection.Id))
			continue
		}

		s.events.Handle(connection, event.Event, event.Data)
	}
}

func (s *WebSocketServer) writePump(conn *websocket.Conn, connection *realtime.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-connection.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := conn.WriteJSON(event)
			if err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
