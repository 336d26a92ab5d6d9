package hub

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"

	"github.com/soar/axisremap/internal/curve"
	"github.com/soar/axisremap/internal/remap"
)

// CurveEditor applies editor commands to a named axis curve.
type CurveEditor interface {
	ApplyEdit(axis string, op remap.EditOp) (curve.Parameters, error)
}

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

// WritePump sends messages from the send channel to the WebSocket
// connection.
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

// ReadPump reads editor commands from the WebSocket and dispatches
// them to the curve editor. Curve updates are broadcast to every
// client so all open editors stay in sync; rejections go back to the
// sender only.
func (c *Client) ReadPump(editor CurveEditor) {
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
		case "edit":
			params, err := editor.ApplyEdit(clientMsg.Axis, clientMsg.Edit)
			if err != nil {
				log.Printf("Edit rejected on axis %s: %v", clientMsg.Axis, err)
				c.sendMessage(NewRejectedMessage(clientMsg.Axis, err))
				continue
			}
			data, err := json.Marshal(NewCurveMessage(clientMsg.Axis, params))
			if err != nil {
				log.Printf("Error marshaling curve message: %v", err)
				continue
			}
			c.hub.Broadcast(data)
		}
	}
}

func (c *Client) sendMessage(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
