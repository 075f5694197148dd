package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"wargame_server/internal/logger"
	"wargame_server/internal/service"
)

// WSHandler upgrades player connections and hands them to the session layer.
type WSHandler struct {
	Hub     *Hub
	Session *PlayerSession

	// AllowedOrigin restricts the upgrade origin; empty allows all.
	AllowedOrigin string
}

func NewWSHandler(hub *Hub, session *PlayerSession, allowedOrigin string) *WSHandler {
	return &WSHandler{
		Hub:           hub,
		Session:       session,
		AllowedOrigin: allowedOrigin,
	}
}

// HandleWS is the GET /ws endpoint. A token query parameter is optional:
// when present and valid it pins the durable player identity; an invalid
// token is rejected so it cannot silently fall back to name identity.
func (h *WSHandler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		authPlayerID := ""
		if token := c.Query("token"); token != "" {
			if !service.JWTEnabled() {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token auth not enabled"})
				return
			}
			playerID, err := service.ParsePlayerToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			authPlayerID = playerID
		}

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if h.AllowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == h.AllowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(conn, h.Session, authPlayerID)
		h.Hub.Register(client)

		logger.Info("player connected", "connection", client.ID, "authenticated", authPlayerID != "")
		go client.Run()
	}
}
