package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wargame_server/internal/domain"
)

var (
	ErrGameFull            = errors.New("game already has two players")
	ErrConnectionNotInGame = errors.New("connection not part of game")
	ErrPlayerNotInGame     = errors.New("player not found in this game")
)

// ReadyState is the outcome of a SetReady call. When TimeoutWinner is set the
// ready flag was not touched: the timebank expired before this attempt.
type ReadyState struct {
	BothReady     bool
	ReadyPlayer   *domain.PlayerSlot
	TimeoutWinner *domain.WinnerSeat
}

// DrawnRoundResult describes one resolved round.
type DrawnRoundResult struct {
	Card1      domain.Card
	Card2      domain.Card
	Round      int
	WinnerSeat domain.WinnerSeat
}

// GameInstance holds the authoritative state of one two-player duel: both
// decks, the round counter, ready flags and the per-seat timebank budgets.
// It performs no I/O and no locking of its own - all mutation goes through
// the game service, which serializes access.
type GameInstance struct {
	id string

	Player1 *domain.PlayerSlot
	Player2 *domain.PlayerSlot

	deck1 *Deck
	deck2 *Deck

	round   int
	p1Ready bool
	p2Ready bool

	// timebank == 0 means unlimited thinking time
	timebank       time.Duration
	p1Remaining    time.Duration
	p2Remaining    time.Duration
	lastCheckpoint time.Time

	maxRounds int // 0 = no round cap

	now        func() time.Time
	done       chan struct{}
	cancelOnce sync.Once
}

// NewGameInstance creates a match with freshly shuffled decks. maxRounds and
// timebank are zero when the respective feature is disabled.
func NewGameInstance(rng *rand.Rand, maxRounds int, timebank time.Duration) *GameInstance {
	return NewGameInstanceWithClock(rng, maxRounds, timebank, time.Now)
}

// NewGameInstanceWithClock is NewGameInstance with an injected wall clock,
// used by the timebank tests.
func NewGameInstanceWithClock(rng *rand.Rand, maxRounds int, timebank time.Duration, now func() time.Time) *GameInstance {
	deck1, deck2 := NewShuffledDecks(rng)

	return &GameInstance{
		id:             strings.ReplaceAll(uuid.New().String(), "-", ""),
		deck1:          deck1,
		deck2:          deck2,
		round:          1,
		timebank:       timebank,
		p1Remaining:    timebank,
		p2Remaining:    timebank,
		lastCheckpoint: now(),
		maxRounds:      maxRounds,
		now:            now,
		done:           make(chan struct{}),
	}
}

func (g *GameInstance) ID() string { return g.id }

// CurrentRound is the round about to be played (1-based).
func (g *GameInstance) CurrentRound() int { return g.round }

func (g *GameInstance) IsFull() bool {
	return g.Player1 != nil && g.Player2 != nil
}

// IsEmpty reports whether no seat has a live connection. Seats may still be
// reserved for reconnection.
func (g *GameInstance) IsEmpty() bool {
	return (g.Player1 == nil || g.Player1.ConnectionID == "") &&
		(g.Player2 == nil || g.Player2.ConnectionID == "")
}

func (g *GameInstance) HasCards() bool {
	return g.deck1.Len() > 0 && g.deck2.Len() > 0
}

func (g *GameInstance) Deck1Count() int { return g.deck1.Len() }
func (g *GameInstance) Deck2Count() int { return g.deck2.Len() }

// ConnectionIDs returns the live connection ids of both seats.
func (g *GameInstance) ConnectionIDs() []string {
	var ids []string
	if g.Player1 != nil && g.Player1.ConnectionID != "" {
		ids = append(ids, g.Player1.ConnectionID)
	}
	if g.Player2 != nil && g.Player2.ConnectionID != "" {
		ids = append(ids, g.Player2.ConnectionID)
	}
	return ids
}

// AddPlayer fills the next open seat. The timebank checkpoint starts once the
// match becomes full.
func (g *GameInstance) AddPlayer(playerID, connectionID, name string) (*domain.PlayerSlot, error) {
	if g.Player1 == nil {
		g.Player1 = &domain.PlayerSlot{Seat: 1, PlayerID: playerID, ConnectionID: connectionID, Name: name}
		if g.IsFull() && g.timebank > 0 {
			g.lastCheckpoint = g.now()
		}
		return g.Player1, nil
	}

	if g.Player2 == nil {
		g.Player2 = &domain.PlayerSlot{Seat: 2, PlayerID: playerID, ConnectionID: connectionID, Name: name}
		if g.IsFull() && g.timebank > 0 {
			g.lastCheckpoint = g.now()
		}
		return g.Player2, nil
	}

	return nil, ErrGameFull
}

// RemovePlayer clears the seat's connection, keeping the seat reserved for
// the same player id. Returns nil if the connection is not seated here.
func (g *GameInstance) RemovePlayer(connectionID string) *domain.PlayerSlot {
	if g.Player1 != nil && g.Player1.ConnectionID == connectionID {
		g.Player1.ConnectionID = ""
		return g.Player1
	}

	if g.Player2 != nil && g.Player2.ConnectionID == connectionID {
		g.Player2.ConnectionID = ""
		return g.Player2
	}

	return nil
}

// OpponentConnectionID returns the other seat's connection id, or "" when the
// opponent is absent or disconnected.
func (g *GameInstance) OpponentConnectionID(connectionID string) string {
	if g.Player1 != nil && g.Player1.ConnectionID == connectionID {
		if g.Player2 != nil {
			return g.Player2.ConnectionID
		}
		return ""
	}
	if g.Player2 != nil && g.Player2.ConnectionID == connectionID {
		if g.Player1 != nil {
			return g.Player1.ConnectionID
		}
	}
	return ""
}

func (g *GameInstance) SlotByPlayerID(playerID string) *domain.PlayerSlot {
	if g.Player1 != nil && g.Player1.PlayerID == playerID {
		return g.Player1
	}
	if g.Player2 != nil && g.Player2.PlayerID == playerID {
		return g.Player2
	}
	return nil
}

// ReplaceConnection reattaches a reconnecting player's seat to a new
// connection without touching any match state.
func (g *GameInstance) ReplaceConnection(playerID, newConnectionID string) error {
	slot := g.SlotByPlayerID(playerID)
	if slot == nil {
		return ErrPlayerNotInGame
	}
	slot.ConnectionID = newConnectionID
	return nil
}

// SetReady reconciles the timebank first; an expired budget wins over the
// ready attempt and nobody is marked ready. Otherwise the caller's seat is
// marked ready and BothReady reports whether the round can resolve.
func (g *GameInstance) SetReady(connectionID string) (ReadyState, error) {
	if winner := g.consumeTimebank(); winner != nil {
		return ReadyState{TimeoutWinner: winner}, nil
	}

	if g.Player1 != nil && g.Player1.ConnectionID == connectionID {
		g.p1Ready = true
		return ReadyState{BothReady: g.p1Ready && g.p2Ready, ReadyPlayer: g.Player1}, nil
	}

	if g.Player2 != nil && g.Player2.ConnectionID == connectionID {
		g.p2Ready = true
		return ReadyState{BothReady: g.p1Ready && g.p2Ready, ReadyPlayer: g.Player2}, nil
	}

	return ReadyState{}, ErrConnectionNotInGame
}

// ResetReady clears both ready flags and restarts the timebank checkpoint.
// Called right after a round resolves.
func (g *GameInstance) ResetReady() {
	g.p1Ready = false
	g.p2Ready = false
	if g.timebank > 0 {
		g.lastCheckpoint = g.now()
	}
}

// consumeTimebank charges the wall-clock time since the last checkpoint to
// every seat that has not readied yet. There is no background timer: expiry
// is only ever detected here, on the next ready attempt.
func (g *GameInstance) consumeTimebank() *domain.WinnerSeat {
	if g.timebank == 0 {
		return nil
	}

	now := g.now()
	elapsed := now.Sub(g.lastCheckpoint)
	g.lastCheckpoint = now

	if !g.p1Ready {
		g.p1Remaining -= elapsed
	}
	if !g.p2Ready {
		g.p2Remaining -= elapsed
	}

	p1Out := g.p1Remaining <= 0
	p2Out := g.p2Remaining <= 0

	switch {
	case p1Out && p2Out:
		return winnerPtr(domain.Tie)
	case p1Out:
		return winnerPtr(domain.Player2)
	case p2Out:
		return winnerPtr(domain.Player1)
	}
	return nil
}

// DrawRound pops the top card of each deck, resolves the duel and recycles
// both cards to the bottom of the winner's deck (the winner's own card goes
// under first). On a tie each card returns to its owner's deck. Must not be
// called when either deck is empty.
func (g *GameInstance) DrawRound() DrawnRoundResult {
	card1 := g.deck1.Draw()
	card2 := g.deck2.Draw()
	round := g.round
	g.round++

	winner := domain.Tie
	switch {
	case card1.Value() > card2.Value():
		winner = domain.Player1
		g.deck1.Enqueue(card1)
		g.deck1.Enqueue(card2)
	case card2.Value() > card1.Value():
		winner = domain.Player2
		g.deck2.Enqueue(card2)
		g.deck2.Enqueue(card1)
	default:
		g.deck1.Enqueue(card1)
		g.deck2.Enqueue(card2)
	}

	return DrawnRoundResult{Card1: card1, Card2: card2, Round: round, WinnerSeat: winner}
}

// HasFinished returns the overall winner when a terminal condition holds:
// an empty deck loses outright; once the round cap is reached the larger
// deck wins, equal decks tie. Nil means play continues.
func (g *GameInstance) HasFinished() *domain.WinnerSeat {
	if g.deck1.Len() <= 0 {
		return winnerPtr(domain.Player2)
	}
	if g.deck2.Len() <= 0 {
		return winnerPtr(domain.Player1)
	}

	if g.maxRounds > 0 {
		completed := g.round - 1
		if completed >= g.maxRounds {
			switch {
			case g.deck1.Len() > g.deck2.Len():
				return winnerPtr(domain.Player1)
			case g.deck2.Len() > g.deck1.Len():
				return winnerPtr(domain.Player2)
			default:
				return winnerPtr(domain.Tie)
			}
		}
	}

	return nil
}

// Done is closed when the match is cancelled (disconnect or cleanup), so any
// wait tied to this match can be abandoned.
func (g *GameInstance) Done() <-chan struct{} {
	return g.done
}

func (g *GameInstance) Cancel() {
	g.cancelOnce.Do(func() { close(g.done) })
}

func winnerPtr(w domain.WinnerSeat) *domain.WinnerSeat {
	return &w
}
