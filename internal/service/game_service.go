package service

import (
	"math/rand"
	"sync"
	"time"

	"wargame_server/internal/game"
	"wargame_server/internal/logger"
	"wargame_server/internal/metrics"
)

// GameService is the process-wide session registry. It owns the single
// waiting slot, the active-match index and the connection/player lookup maps,
// all guarded by one mutex: at most one registry operation runs at a time.
// No I/O happens under the lock - callers send messages based on the returned
// result values only.
type GameService struct {
	mu sync.Mutex

	waitingGame  *game.GameInstance
	activeGames  map[string]*game.GameInstance
	byConnection map[string]*game.GameInstance
	byPlayer     map[string]*game.GameInstance

	maxRounds int
	timebank  time.Duration

	rng *rand.Rand
	now func() time.Time
}

// NewGameService builds the registry. maxRounds and timebankSeconds of zero
// disable the round cap and the timebank respectively.
func NewGameService(maxRounds, timebankSeconds int) *GameService {
	return &GameService{
		activeGames:  make(map[string]*game.GameInstance),
		byConnection: make(map[string]*game.GameInstance),
		byPlayer:     make(map[string]*game.GameInstance),
		maxRounds:    maxRounds,
		timebank:     time.Duration(timebankSeconds) * time.Second,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
}

// JoinOrReconnect seats a player. A connection that is already mapped is a
// duplicate join and yields nil. A known player id is a resume: the seat is
// reattached to the new connection and match state is untouched. Otherwise
// the player fills the waiting match (creating one if needed); when the
// match becomes full it moves into the active index.
func (s *GameService) JoinOrReconnect(playerID, connectionID, name string) *JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byConnection[connectionID]; exists {
		return nil
	}

	if existing, ok := s.byPlayer[playerID]; ok {
		if err := existing.ReplaceConnection(playerID, connectionID); err != nil {
			logger.Error("resume for unknown player slot", "player", playerID, "game", existing.ID(), "error", err)
			return nil
		}
		s.byConnection[connectionID] = existing
		metrics.Reconnects.Inc()
		logger.Info("player resumed", "player", playerID, "game", existing.ID(), "round", existing.CurrentRound())
		return resumeResult(existing, existing.SlotByPlayerID(playerID))
	}

	if s.waitingGame == nil || s.waitingGame.IsFull() {
		s.waitingGame = game.NewGameInstanceWithClock(s.rng, s.maxRounds, s.timebank, s.now)
		logger.Info("created waiting game", "game", s.waitingGame.ID())
	}

	instance := s.waitingGame
	slot, err := instance.AddPlayer(playerID, connectionID, name)
	if err != nil {
		// unreachable: a full game never stays in the waiting slot
		logger.Error("waiting game refused player", "game", instance.ID(), "error", err)
		return nil
	}
	s.byConnection[connectionID] = instance
	s.byPlayer[playerID] = instance

	isWaiting := !instance.IsFull()
	if instance.IsFull() {
		s.waitingGame = nil
		s.activeGames[instance.ID()] = instance
		metrics.GamesStarted.Inc()
		metrics.ActiveGames.Set(float64(len(s.activeGames)))
		logger.Info("game started", "game", instance.ID(),
			"player1", slotName(instance.Player1), "player2", slotName(instance.Player2))
	}

	return newJoinResult(instance, slot, isWaiting)
}

// ReadyUp handles a reveal request from one connection. Nil means the
// connection is unmapped or the match can no longer draw (defensive no-op).
func (s *GameService) ReadyUp(connectionID string) *RevealResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.byConnection[connectionID]
	if !ok {
		return nil
	}

	if !instance.HasCards() {
		return nil
	}

	ready, err := instance.SetReady(connectionID)
	if err != nil {
		// the byConnection invariant guarantees the seat exists
		logger.Error("ready from connection not seated in its game", "game", instance.ID(), "error", err)
		return nil
	}

	if ready.TimeoutWinner != nil {
		winner := *ready.TimeoutWinner
		s.cleanupLocked(instance)
		metrics.Timeouts.Inc()
		logger.Info("game finished by timeout", "game", instance.ID(), "winner", winner)
		return resolvedReveal(instance.ID(), instance.CurrentRound(), nil, nil, winner,
			instance.Deck1Count(), instance.Deck2Count(), &winner)
	}

	if !ready.BothReady {
		return waitingReveal(instance.ID(), instance.CurrentRound(), ready.ReadyPlayer.Seat)
	}

	draw := instance.DrawRound()
	instance.ResetReady()
	metrics.RoundsPlayed.Inc()

	gameWinner := instance.HasFinished()
	if gameWinner != nil {
		s.cleanupLocked(instance)
		logger.Info("game finished", "game", instance.ID(), "winner", *gameWinner, "rounds", draw.Round)
	}

	result := resolvedReveal(instance.ID(), draw.Round, &draw.Card1, &draw.Card2, draw.WinnerSeat,
		instance.Deck1Count(), instance.Deck2Count(), gameWinner)
	result.Cancelled = instance.Done()
	return result
}

// HandleDisconnect unmaps the connection and vacates its seat, keeping the
// seat reserved for the same player id. A still-waiting match is abandoned
// entirely; a full match with no connected seats left is dropped from the
// active index.
func (s *GameService) HandleDisconnect(connectionID string) DisconnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.byConnection[connectionID]
	if !ok {
		return DisconnectResult{}
	}

	// capture the opponent before the seat is vacated; OpponentConnectionID
	// matches seats by live connection id
	opponent := instance.OpponentConnectionID(connectionID)
	slot := instance.RemovePlayer(connectionID)
	delete(s.byConnection, connectionID)

	wasWaiting := false
	if instance == s.waitingGame {
		// an incomplete match is never kept for an unrelated future joiner
		s.waitingGame = nil
		wasWaiting = true
		s.cleanupLocked(instance)
	} else if instance.IsEmpty() {
		delete(s.activeGames, instance.ID())
		metrics.ActiveGames.Set(float64(len(s.activeGames)))
	}

	metrics.Disconnects.Inc()
	logger.Info("player disconnected", "game", instance.ID(), "connection", connectionID, "wasWaiting", wasWaiting)

	return DisconnectResult{
		Instance:             instance,
		Slot:                 slot,
		OpponentConnectionID: opponent,
		WasWaitingGame:       wasWaiting,
	}
}

// CleanupInstance removes the match from every index and cancels it, so any
// pending delayed send for it is abandoned. Idempotent. The normal
// end-of-game path uses cleanupLocked directly and does not cancel: the
// concluding message must still go out.
func (s *GameService) CleanupInstance(instance *game.GameInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked(instance)
	instance.Cancel()
}

func (s *GameService) cleanupLocked(instance *game.GameInstance) {
	delete(s.activeGames, instance.ID())

	for _, connectionID := range instance.ConnectionIDs() {
		delete(s.byConnection, connectionID)
	}

	if instance.Player1 != nil {
		delete(s.byPlayer, instance.Player1.PlayerID)
	}
	if instance.Player2 != nil {
		delete(s.byPlayer, instance.Player2.PlayerID)
	}

	metrics.ActiveGames.Set(float64(len(s.activeGames)))
}

// ActiveGameCount reports the number of full matches currently indexed.
func (s *GameService) ActiveGameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeGames)
}
