package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wargame_server/internal/service"
)

type tokenRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// IssueToken is POST /auth/token. It signs an identity token whose subject
// becomes the durable player id on the websocket handshake, so a player can
// resume the same seat from a new device. Returns 501 when no signing secret
// is configured.
func IssueToken(c *gin.Context) {
	if !service.JWTEnabled() {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "token auth not enabled"})
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId required"})
		return
	}

	token, err := service.IssueToken(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
