package ws

import (
	"time"

	"wargame_server/internal/logger"
	"wargame_server/internal/service"
)

// finishDelay lets clients finish the reveal animation before the final
// GameFinished lands. Variable so tests can shorten it.
var finishDelay = 2500 * time.Millisecond

// PlayerSession translates player actions into registry calls and registry
// results into outbound messages. All game decisions happen inside the
// service; this layer only routes.
type PlayerSession struct {
	games *service.GameService
	hub   *Hub
}

func NewPlayerSession(games *service.GameService, hub *Hub) *PlayerSession {
	return &PlayerSession{games: games, hub: hub}
}

// HandleJoin seats or resumes the player. The durable identity is the
// authenticated player id when the handshake carried one, the display name
// otherwise.
func (s *PlayerSession) HandleJoin(c *Client, name string) {
	playerID := c.AuthPlayerID
	if playerID == "" {
		playerID = name
	}
	if playerID == "" {
		logger.Warn("session: join without a name", "connection", c.ID)
		return
	}

	result := s.games.JoinOrReconnect(playerID, c.ID, name)
	if result == nil {
		// duplicate join on this connection
		return
	}

	s.hub.AddToGroup(result.GameInstanceID, c)

	switch {
	case result.IsResume:
		s.hub.SendToConnection(c.ID, joinMessage(result))
	case result.IsWaitingForOpponent:
		s.hub.SendToConnection(c.ID, joinMessage(result))
	}

	if result.StartedNow {
		s.hub.SendToConnection(c.ID, joinMessage(result))
		s.hub.SendToGroup(result.GameInstanceID, gameStartedMessage(result))
	}
}

// HandleReveal runs one ready attempt and emits whatever it produced: a
// PlayerReady notice, an immediate timeout conclusion, or a resolved round
// (followed by a delayed GameFinished when the match just ended).
func (s *PlayerSession) HandleReveal(c *Client) {
	reveal := s.games.ReadyUp(c.ID)
	if reveal == nil {
		return
	}

	if reveal.IsWaiting {
		s.hub.SendToGroup(reveal.GameID, playerReadyMessage(reveal.WaitingSeat))
		return
	}

	// timebank conclusion carries no cards and ends the game right away
	if reveal.IsFinished && reveal.Player1Card == nil && reveal.Player2Card == nil {
		s.hub.SendToGroup(reveal.GameID, gameFinishedMessage(reveal.GameID, *reveal.GameWinner))
		return
	}

	s.hub.SendToGroup(reveal.GameID, roundRevealedMessage(reveal))

	if reveal.IsFinished {
		gameID := reveal.GameID
		winner := *reveal.GameWinner
		cancelled := reveal.Cancelled
		delay := finishDelay
		go func() {
			select {
			case <-time.After(delay):
				s.hub.SendToGroup(gameID, gameFinishedMessage(gameID, winner))
			case <-cancelled:
				logger.Debug("session: finish notice abandoned", "game", gameID)
			}
		}()
	}
}

// HandleDisconnect vacates the seat and tells the opponent, if any is still
// connected. Only an abandoned waiting match is cancelled: a seated match
// keeps its seat reserved for resumption, and any pending finish notice must
// still reach whoever stayed.
func (s *PlayerSession) HandleDisconnect(c *Client) {
	defer s.hub.Unregister(c)

	result := s.games.HandleDisconnect(c.ID)
	if result.Instance == nil {
		return
	}

	if result.WasWaitingGame {
		result.Instance.Cancel()
	}

	if result.OpponentConnectionID != "" {
		name := "Unknown"
		if result.Slot != nil && result.Slot.Name != "" {
			name = result.Slot.Name
		}
		s.hub.SendToConnection(result.OpponentConnectionID, opponentLeftMessage(result.Instance.ID(), name))
	}
}
