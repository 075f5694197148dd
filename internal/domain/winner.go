package domain

// WinnerSeat identifies the outcome of a round or a whole game.
// Values line up with seat numbers so the client can compare directly.
type WinnerSeat int

const (
	Tie     WinnerSeat = 0
	Player1 WinnerSeat = 1
	Player2 WinnerSeat = 2
)

func (w WinnerSeat) String() string {
	switch w {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "tie"
	}
}

// PlayerSlot binds a seat to a player. Seat, PlayerID and Name are fixed for
// the lifetime of the match; ConnectionID is the only mutable field - it is
// swapped on reconnect and cleared to "" on disconnect while the seat stays
// reserved for the same PlayerID.
type PlayerSlot struct {
	Seat         int    `json:"seat"`
	PlayerID     string `json:"playerId"`
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
}
