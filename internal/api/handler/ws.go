package handler

import (
	"complaintdesk/backend/internal/chathub"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// newUpgrader дозволяє з'єднання лише з дозволених доменів (або з будь-яких, якщо список порожній)
func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowed) == 0 || allowed[origin]
		},
	}
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket
func (h *Handler) ServeWebSocket(upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Користувач вже автентифікований middleware (токен у ?token=)
		a, ok := h.actor(c)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WARNING: Websocket upgrade for %s failed: %v", a.UserID, err)
			return
		}

		// 2. Реєстрація клієнта в Hub
		client := chathub.NewWebSocketClient(h.Hub, conn, a)
		if err := h.Hub.Register(client); err != nil {
			conn.Close()
			return
		}

		// 3. Запуск клієнта
		client.Run()
	}
}
