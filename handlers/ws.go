// handlers/ws.go - Notification channel endpoint
package handlers

import (
	"kudos/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to the notification
// endpoint before the upgrade handler runs.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler hands the upgraded connection to the hub. The channel
// is deliberately unauthenticated; every connected client sees every
// event.
var WebSocketHandler = websocket.New(func(conn *websocket.Conn) {
	ws.GetHub().Handle(conn)
})
