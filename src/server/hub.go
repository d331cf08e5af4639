package server

import (
	"encoding/json"
	"net/http"
	"time"

	"market-simulator/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.setConnectionCount(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnectionCount(len(s.clients))
			s.Logger.Info("WebSocket connected. Total connections: %d", len(s.clients))

			// Greet with the current symbol universe
			if data, err := json.Marshal(s.helloEvent()); err == nil {
				select {
				case client.send <- data:
				default:
				}
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.setConnectionCount(len(s.clients))
				s.Logger.Info("WebSocket disconnected. Total connections: %d", len(s.clients))
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Slow consumer: drop this message, keep the connection.
					// The pumps evict the client on ping timeout or write
					// failure instead
					s.Logger.Debug("Client buffer full, message dropped")
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// helloEvent is the first frame every client receives
func (s *APIServer) helloEvent() *models.MEvent {
	event := &models.MEvent{
		Type:      models.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	}
	if s.market != nil {
		event.Symbols = s.market.Symbols()
	}
	return event
}

// -----------------------------------------------------------------------------
// Event Sink Implementation
// -----------------------------------------------------------------------------

// BroadcastEvent marshals once and fans the frame out to every client. Never
// blocks, a full hub queue loses the event
func (s *APIServer) BroadcastEvent(event *models.MEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.Logger.Error("Failed to marshal %s event: %v", event.Type, err)
		return
	}

	select {
	case s.broadcast <- data:
	default:
		s.Logger.Warning("Broadcast queue full, %s event dropped", event.Type)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan []byte, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
