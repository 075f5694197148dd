package service

import (
	"wargame_server/internal/domain"
	"wargame_server/internal/game"
)

// JoinResult is the immutable snapshot returned by JoinOrReconnect. The
// transport layer turns it into Join/Resume/GameStarted messages.
type JoinResult struct {
	GameInstanceID       string
	Player1DeckCount     int
	Player2DeckCount     int
	Player1Name          string
	Player2Name          string
	CurrentRoundProgress int
	Slot                 domain.PlayerSlot
	IsWaitingForOpponent bool
	IsResume             bool
	StartedNow           bool
}

func resumeResult(g *game.GameInstance, slot *domain.PlayerSlot) *JoinResult {
	return &JoinResult{
		GameInstanceID:       g.ID(),
		Player1DeckCount:     g.Deck1Count(),
		Player2DeckCount:     g.Deck2Count(),
		Player1Name:          slotName(g.Player1),
		Player2Name:          slotName(g.Player2),
		CurrentRoundProgress: g.CurrentRound(),
		Slot:                 *slot,
		IsResume:             true,
	}
}

func newJoinResult(g *game.GameInstance, slot *domain.PlayerSlot, isWaiting bool) *JoinResult {
	return &JoinResult{
		GameInstanceID:       g.ID(),
		Player1DeckCount:     g.Deck1Count(),
		Player2DeckCount:     g.Deck2Count(),
		Player1Name:          slotName(g.Player1),
		Player2Name:          slotName(g.Player2),
		CurrentRoundProgress: g.CurrentRound(),
		Slot:                 *slot,
		IsWaitingForOpponent: isWaiting,
		StartedNow:           !isWaiting && g.CurrentRound() == 1,
	}
}

func slotName(slot *domain.PlayerSlot) string {
	if slot == nil {
		return ""
	}
	return slot.Name
}

// RevealResult is the outcome of a ReadyUp call. Either IsWaiting is set
// (one seat readied, the other has not) or the round resolved and the card
// fields are populated. A timeout conclusion resolves with nil cards.
type RevealResult struct {
	GameID           string
	Round            int
	Player1Card      *domain.Card
	Player2Card      *domain.Card
	WinnerSeat       domain.WinnerSeat
	RemainingPlayer1 int
	RemainingPlayer2 int
	IsFinished       bool
	IsWaiting        bool
	WaitingSeat      int
	GameWinner       *domain.WinnerSeat

	// Cancelled is the match's cancellation signal; a delayed GameFinished
	// send is abandoned when it fires.
	Cancelled <-chan struct{}
}

func waitingReveal(gameID string, round, waitingSeat int) *RevealResult {
	return &RevealResult{
		GameID:      gameID,
		Round:       round,
		IsWaiting:   true,
		WaitingSeat: waitingSeat,
	}
}

func resolvedReveal(gameID string, round int, card1, card2 *domain.Card, winnerSeat domain.WinnerSeat, p1Remaining, p2Remaining int, gameWinner *domain.WinnerSeat) *RevealResult {
	return &RevealResult{
		GameID:           gameID,
		Round:            round,
		Player1Card:      card1,
		Player2Card:      card2,
		WinnerSeat:       winnerSeat,
		RemainingPlayer1: p1Remaining,
		RemainingPlayer2: p2Remaining,
		IsFinished:       gameWinner != nil,
		GameWinner:       gameWinner,
	}
}

// DisconnectResult describes what a disconnect did to the match so the
// transport layer can notify the opponent.
type DisconnectResult struct {
	Instance             *game.GameInstance
	Slot                 *domain.PlayerSlot
	OpponentConnectionID string
	WasWaitingGame       bool
}
