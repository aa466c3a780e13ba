package hub

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPump(ctrl Controller) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Error parsing client message: %v", err)
			continue
		}

		switch clientMsg.Type {
		case "rumble":
			err := ctrl.Rumble(clientMsg.Instance, clientMsg.Low, clientMsg.High, clientMsg.DurationMS)
			if err != nil {
				log.Printf("Rumble on instance %d failed: %v", clientMsg.Instance, err)
			}

		case "select_player":
			err := ctrl.SetPlayerIndex(clientMsg.Instance, clientMsg.PlayerIndex)
			if err != nil {
				log.Printf("Player assignment for instance %d failed: %v", clientMsg.Instance, err)
				continue
			}
			msg := NewPlayerSelectedMessage(clientMsg.Instance, clientMsg.PlayerIndex)
			data, _ := json.Marshal(msg)
			select {
			case c.send <- data:
			default:
			}
			log.Printf("Instance %d assigned to player %d", clientMsg.Instance, clientMsg.PlayerIndex)
		}
	}
}
