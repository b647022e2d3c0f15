package handlers

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebSocketUpgrade rejects plain HTTP requests on the websocket route.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationSocket holds a notification connection open and logs its
// lifecycle. Messages from the client are drained and ignored.
func NotificationSocket(conn *websocket.Conn) {
	log.Printf("WebSocket client connected: %s", conn.RemoteAddr())
	defer func() {
		log.Printf("WebSocket client disconnected: %s", conn.RemoteAddr())
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
