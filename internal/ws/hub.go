package ws

import (
	"encoding/json"
	"sync"
	"time"

	"wargame_server/internal/logger"
	"wargame_server/internal/metrics"
)

const sendTimeout = 2 * time.Second

// Hub tracks open connections and per-match groups. It implements the two
// primitives the game layer needs: send a payload to one connection, and
// send a payload to every connection in a match group. It holds no game
// state of its own.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connection id -> client
	groups  map[string]map[string]*Client // game id -> connection id -> client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	metrics.ConnectedClients.Inc()
	logger.Debug("hub: registered connection", "connection", c.ID)
}

// Unregister drops the connection from the hub and from any group it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	for gameID, members := range h.groups {
		if _, ok := members[c.ID]; ok {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(h.groups, gameID)
			}
		}
	}
	h.mu.Unlock()

	metrics.ConnectedClients.Dec()
	logger.Debug("hub: unregistered connection", "connection", c.ID)
}

// AddToGroup joins a connection to a match group so broadcasts reach it.
func (h *Hub) AddToGroup(gameID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[gameID]
	if !ok {
		members = make(map[string]*Client, 2)
		h.groups[gameID] = members
	}
	members[c.ID] = c
}

// SendToConnection delivers one message to one connection. Unknown
// connections are ignored: the socket may have closed already.
func (h *Hub) SendToConnection(connectionID string, msg OutgoingMessage) {
	h.mu.RLock()
	c, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		logger.Debug("hub: send to unknown connection", "connection", connectionID)
		return
	}

	h.deliver(c, msg)
}

// SendToGroup broadcasts one message to every connection in a match group.
func (h *Hub) SendToGroup(gameID string, msg OutgoingMessage) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[gameID]))
	for _, c := range h.groups[gameID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		h.deliver(c, msg)
	}
}

func (h *Hub) deliver(c *Client, msg OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("hub: marshal failed", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.Send <- data:
	case <-time.After(sendTimeout):
		logger.Warn("hub: send timed out", "connection", c.ID, "type", msg.Type)
	}
}
