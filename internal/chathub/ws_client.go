package chathub

import (
	"complaintdesk/backend/internal/models"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Константи з'єднання
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// WebSocketClient реалізує інтерфейс chathub.Client
type WebSocketClient struct {
	ID    string
	Actor models.Actor
	Scope string
	Conn  *websocket.Conn
	Hub   *ManagerService
	Send  chan models.ServerEvent

	closeOnce sync.Once
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, actor models.Actor) *WebSocketClient {
	return &WebSocketClient{
		ID:    uuid.NewString(),
		Actor: actor,
		Conn:  conn,
		Hub:   hub,
		Send:  make(chan models.ServerEvent, sendBuffer),
	}
}

// --- Реалізація методів інтерфейсу ---

func (c *WebSocketClient) GetID() string                             { return c.ID }
func (c *WebSocketClient) GetActor() models.Actor                    { return c.Actor }
func (c *WebSocketClient) GetScope() string                          { return c.Scope }
func (c *WebSocketClient) SetScope(id string)                        { c.Scope = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump)
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketClient) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var cmd models.ClientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Printf("Error decoding JSON from client %s: %v", c.ID, err)
			continue // Пропускаємо невірне повідомлення
		}

		switch cmd.Type {
		case "join":
			c.Hub.RequestJoin(ctx, c, cmd.ComplaintID)
		case "leave":
			c.Hub.RequestJoin(ctx, c, "")
		default:
			log.Printf("WARNING: Unknown command %q from client %s", cmd.Type, c.ID)
		}
	}
}

// writePump читає події з каналу Send і записує їх у WebSocket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(event); err != nil {
				log.Printf("Error writing to client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
