package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wargame_server/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one websocket connection. The connection id is minted here and
// is the opaque identifier the whole game layer works with. AuthPlayerID is
// set when the handshake carried a valid token; otherwise the durable player
// identity is derived from the join name.
type Client struct {
	ID           string
	AuthPlayerID string
	Conn         *websocket.Conn
	Send         chan []byte

	session *PlayerSession
}

func NewClient(conn *websocket.Conn, session *PlayerSession, authPlayerID string) *Client {
	return &Client{
		ID:           uuid.NewString(),
		AuthPlayerID: authPlayerID,
		Conn:         conn,
		Send:         make(chan []byte, 64),
		session:      session,
	}
}

// Run starts both pumps. The writer goes first so messages produced by an
// immediate join cannot be dropped.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.session.HandleDisconnect(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			logger.Debug("client: read ended", "connection", c.ID, "error", err)
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("client: bad message", "connection", c.ID, "error", err)
			continue
		}

		switch msg.Type {
		case ActionJoin:
			c.session.HandleJoin(c, msg.Name)
		case ActionReveal:
			c.session.HandleReveal(c)
		default:
			logger.Warn("client: unknown action", "connection", c.ID, "action", msg.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("client: write failed", "connection", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
