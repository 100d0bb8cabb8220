package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection with the hub and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, ownerId int64) {
	client := &Client{Hub: hub, Conn: c, OwnerId: ownerId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
