package ws

import (
	"wargame_server/internal/domain"
	"wargame_server/internal/service"
)

// MessageType tags every outbound message. The numeric values are part of
// the wire protocol and match the client's enum.
type MessageType int

const (
	MessageJoin MessageType = iota
	MessageResume
	MessageGameStarted
	MessageRoundRevealed
	MessageGameFinished
	MessageOpponentLeft
	MessagePlayerReady
)

// OutgoingMessage is the envelope for every server-to-client message. The
// payload kinds below are the closed set of everything the server ever sends.
type OutgoingMessage struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// IncomingMessage is what clients send: {"type":"join","name":...} or
// {"type":"reveal"}.
type IncomingMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

const (
	ActionJoin   = "join"
	ActionReveal = "reveal"
)

type JoinPayload struct {
	GameInstanceID       string            `json:"gameInstanceId"`
	Player1DeckCount     int               `json:"player1DeckCount"`
	Player2DeckCount     int               `json:"player2DeckCount"`
	Player1Name          string            `json:"player1Name"`
	Player2Name          string            `json:"player2Name"`
	CurrentRoundProgress int               `json:"currentRoundProgress"`
	Slot                 domain.PlayerSlot `json:"slot"`
	IsWaitingForOpponent bool              `json:"isWaitingForOpponent"`
	IsResume             bool              `json:"isResume"`
	StartedNow           bool              `json:"startedNow"`
}

type GameStartedPayload struct {
	GameInstanceID       string `json:"gameInstanceId"`
	Player1DeckCount     int    `json:"player1DeckCount"`
	Player2DeckCount     int    `json:"player2DeckCount"`
	Player1Name          string `json:"player1Name"`
	Player2Name          string `json:"player2Name"`
	CurrentRoundProgress int    `json:"currentRoundProgress"`
}

type PlayerReadyPayload struct {
	PlayerSeat int `json:"playerSeat"`
}

type RoundRevealedPayload struct {
	GameID           string            `json:"gameId"`
	Round            int               `json:"round"`
	Player1Card      *domain.Card      `json:"player1Card"`
	Player2Card      *domain.Card      `json:"player2Card"`
	WinnerSeat       domain.WinnerSeat `json:"winnerSeat"`
	Player1DeckCount int               `json:"player1DeckCount"`
	Player2DeckCount int               `json:"player2DeckCount"`
}

type GameFinishedPayload struct {
	GameID     string            `json:"gameId"`
	WinnerSeat domain.WinnerSeat `json:"winnerSeat"`
}

type OpponentLeftPayload struct {
	GameID   string `json:"gameId"`
	Opponent string `json:"opponent"`
}

func joinMessage(result *service.JoinResult) OutgoingMessage {
	kind := MessageJoin
	if result.IsResume {
		kind = MessageResume
	}
	return OutgoingMessage{Type: kind, Data: JoinPayload{
		GameInstanceID:       result.GameInstanceID,
		Player1DeckCount:     result.Player1DeckCount,
		Player2DeckCount:     result.Player2DeckCount,
		Player1Name:          result.Player1Name,
		Player2Name:          result.Player2Name,
		CurrentRoundProgress: result.CurrentRoundProgress,
		Slot:                 result.Slot,
		IsWaitingForOpponent: result.IsWaitingForOpponent,
		IsResume:             result.IsResume,
		StartedNow:           result.StartedNow,
	}}
}

func gameStartedMessage(result *service.JoinResult) OutgoingMessage {
	return OutgoingMessage{Type: MessageGameStarted, Data: GameStartedPayload{
		GameInstanceID:       result.GameInstanceID,
		Player1DeckCount:     result.Player1DeckCount,
		Player2DeckCount:     result.Player2DeckCount,
		Player1Name:          result.Player1Name,
		Player2Name:          result.Player2Name,
		CurrentRoundProgress: result.CurrentRoundProgress,
	}}
}

func playerReadyMessage(seat int) OutgoingMessage {
	return OutgoingMessage{Type: MessagePlayerReady, Data: PlayerReadyPayload{PlayerSeat: seat}}
}

func roundRevealedMessage(reveal *service.RevealResult) OutgoingMessage {
	return OutgoingMessage{Type: MessageRoundRevealed, Data: RoundRevealedPayload{
		GameID:           reveal.GameID,
		Round:            reveal.Round,
		Player1Card:      reveal.Player1Card,
		Player2Card:      reveal.Player2Card,
		WinnerSeat:       reveal.WinnerSeat,
		Player1DeckCount: reveal.RemainingPlayer1,
		Player2DeckCount: reveal.RemainingPlayer2,
	}}
}

func gameFinishedMessage(gameID string, winner domain.WinnerSeat) OutgoingMessage {
	return OutgoingMessage{Type: MessageGameFinished, Data: GameFinishedPayload{
		GameID:     gameID,
		WinnerSeat: winner,
	}}
}

func opponentLeftMessage(gameID, opponent string) OutgoingMessage {
	return OutgoingMessage{Type: MessageOpponentLeft, Data: OpponentLeftPayload{
		GameID:   gameID,
		Opponent: opponent,
	}}
}
