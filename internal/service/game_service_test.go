package service

import (
	"math/rand"
	"testing"
	"time"

	"wargame_server/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newTestService(maxRounds, timebankSeconds int, clock *fakeClock) *GameService {
	s := NewGameService(maxRounds, timebankSeconds)
	s.rng = rand.New(rand.NewSource(1))
	s.now = clock.now
	return s
}

func pairUp(t *testing.T, s *GameService) (string, string, *JoinResult) {
	t.Helper()
	first := s.JoinOrReconnect("alice", "conn-a", "Alice")
	if first == nil || !first.IsWaitingForOpponent {
		t.Fatalf("first join = %+v, want waiting", first)
	}
	second := s.JoinOrReconnect("bob", "conn-b", "Bob")
	if second == nil || !second.StartedNow {
		t.Fatalf("second join = %+v, want startedNow", second)
	}
	return "conn-a", "conn-b", second
}

func TestJoinPairsTwoPlayers(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())

	first := s.JoinOrReconnect("alice", "conn-a", "Alice")
	if first == nil {
		t.Fatal("first join returned nil")
	}
	if !first.IsWaitingForOpponent || first.StartedNow || first.IsResume {
		t.Fatalf("first join flags: %+v", first)
	}
	if first.Slot.Seat != 1 || first.Player1DeckCount != 26 || first.Player2DeckCount != 26 {
		t.Fatalf("first join snapshot: %+v", first)
	}

	second := s.JoinOrReconnect("bob", "conn-b", "Bob")
	if second == nil {
		t.Fatal("second join returned nil")
	}
	if second.IsWaitingForOpponent || !second.StartedNow {
		t.Fatalf("second join flags: %+v", second)
	}
	if second.Slot.Seat != 2 {
		t.Fatalf("second join seat = %d, want 2", second.Slot.Seat)
	}
	if second.GameInstanceID != first.GameInstanceID {
		t.Fatal("players landed in different games")
	}
	if second.Player1Name != "Alice" || second.Player2Name != "Bob" {
		t.Fatalf("names: %q / %q", second.Player1Name, second.Player2Name)
	}

	if s.ActiveGameCount() != 1 {
		t.Fatalf("active games = %d, want 1", s.ActiveGameCount())
	}
}

func TestJoinDuplicateConnectionIsNoOp(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())

	if s.JoinOrReconnect("alice", "conn-a", "Alice") == nil {
		t.Fatal("first join returned nil")
	}
	if s.JoinOrReconnect("alice", "conn-a", "Alice") != nil {
		t.Fatal("duplicate join on the same connection was not a no-op")
	}
}

func TestThirdPlayerStartsNewGame(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	_, _, started := pairUp(t, s)

	third := s.JoinOrReconnect("carol", "conn-c", "Carol")
	if third == nil || !third.IsWaitingForOpponent {
		t.Fatalf("third join = %+v, want a fresh waiting game", third)
	}
	if third.GameInstanceID == started.GameInstanceID {
		t.Fatal("third player joined a full game")
	}
}

func TestResumeReattachesSeat(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	_, connB, started := pairUp(t, s)

	disc := s.HandleDisconnect(connB)
	if disc.Instance == nil || disc.Slot.Seat != 2 {
		t.Fatalf("disconnect result: %+v", disc)
	}
	if disc.OpponentConnectionID != "conn-a" {
		t.Fatalf("opponent connection = %q, want conn-a", disc.OpponentConnectionID)
	}
	if disc.WasWaitingGame {
		t.Fatal("full game reported as waiting")
	}

	resume := s.JoinOrReconnect("bob", "conn-b2", "Bob")
	if resume == nil || !resume.IsResume {
		t.Fatalf("rejoin = %+v, want resume", resume)
	}
	if resume.GameInstanceID != started.GameInstanceID {
		t.Fatal("resume landed in a different game")
	}
	if resume.Slot.Seat != 2 || resume.Slot.ConnectionID != "conn-b2" {
		t.Fatalf("resumed slot: %+v", resume.Slot)
	}
	if resume.StartedNow || resume.IsWaitingForOpponent {
		t.Fatalf("resume flags: %+v", resume)
	}

	// the resumed connection can act
	if s.ReadyUp("conn-b2") == nil {
		t.Fatal("ReadyUp on resumed connection was rejected")
	}
}

func TestDisconnectOfWaitingGameAbandonsIt(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())

	first := s.JoinOrReconnect("alice", "conn-a", "Alice")
	disc := s.HandleDisconnect("conn-a")
	if !disc.WasWaitingGame {
		t.Fatal("waiting game not reported as such")
	}

	// the abandoned match must not be inherited: neither by an unrelated
	// joiner nor by the original player coming back
	third := s.JoinOrReconnect("carol", "conn-c", "Carol")
	if third == nil || third.GameInstanceID == first.GameInstanceID {
		t.Fatal("unrelated joiner inherited the abandoned game")
	}

	back := s.JoinOrReconnect("alice", "conn-a2", "Alice")
	if back == nil || back.IsResume {
		t.Fatalf("returning player resumed an abandoned waiting game: %+v", back)
	}
	if !back.StartedNow || back.GameInstanceID != third.GameInstanceID {
		t.Fatalf("returning player should have paired with the new waiter: %+v", back)
	}
}

func TestDisconnectUnknownConnection(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	disc := s.HandleDisconnect("conn-ghost")
	if disc.Instance != nil || disc.Slot != nil {
		t.Fatalf("unknown disconnect produced %+v", disc)
	}
}

func TestEmptyFullGameLeavesActiveIndex(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	connA, connB, _ := pairUp(t, s)

	s.HandleDisconnect(connA)
	if s.ActiveGameCount() != 1 {
		t.Fatalf("active games = %d after one disconnect, want 1", s.ActiveGameCount())
	}

	s.HandleDisconnect(connB)
	if s.ActiveGameCount() != 0 {
		t.Fatalf("active games = %d after both disconnects, want 0", s.ActiveGameCount())
	}
}

func TestReadyUpUnknownConnection(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	if s.ReadyUp("conn-ghost") != nil {
		t.Fatal("ReadyUp for unmapped connection returned a result")
	}
}

func TestReadyUpResolvesRound(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	connA, connB, started := pairUp(t, s)

	waiting := s.ReadyUp(connA)
	if waiting == nil || !waiting.IsWaiting {
		t.Fatalf("first ready = %+v, want waiting", waiting)
	}
	if waiting.WaitingSeat != 1 {
		t.Fatalf("waiting seat = %d, want 1", waiting.WaitingSeat)
	}

	resolved := s.ReadyUp(connB)
	if resolved == nil || resolved.IsWaiting {
		t.Fatalf("second ready = %+v, want resolved", resolved)
	}
	if resolved.GameID != started.GameInstanceID || resolved.Round != 1 {
		t.Fatalf("resolved round: %+v", resolved)
	}
	if resolved.Player1Card == nil || resolved.Player2Card == nil {
		t.Fatal("resolved round carries no cards")
	}
	if total := resolved.RemainingPlayer1 + resolved.RemainingPlayer2; total != 52 {
		t.Fatalf("deck counts sum to %d, want 52", total)
	}

	// ready flags were reset: the next round needs both players again
	next := s.ReadyUp(connA)
	if next == nil || !next.IsWaiting {
		t.Fatalf("ready after reset = %+v, want waiting", next)
	}
	if next.Round != 2 {
		t.Fatalf("round = %d, want 2", next.Round)
	}
}

func TestRoundCapFinishesGame(t *testing.T) {
	s := newTestService(1, 0, newFakeClock())
	connA, connB, _ := pairUp(t, s)

	s.ReadyUp(connA)
	resolved := s.ReadyUp(connB)
	if resolved == nil || !resolved.IsFinished || resolved.GameWinner == nil {
		t.Fatalf("round-capped game did not finish: %+v", resolved)
	}

	// winner must match the deck comparison
	want := domain.Tie
	if resolved.RemainingPlayer1 > resolved.RemainingPlayer2 {
		want = domain.Player1
	} else if resolved.RemainingPlayer2 > resolved.RemainingPlayer1 {
		want = domain.Player2
	}
	if *resolved.GameWinner != want {
		t.Fatalf("game winner = %v, deck counts %d/%d", *resolved.GameWinner, resolved.RemainingPlayer1, resolved.RemainingPlayer2)
	}

	if s.ActiveGameCount() != 0 {
		t.Fatal("finished game still in active index")
	}

	// cleanup removed the connection mappings
	if s.ReadyUp(connA) != nil {
		t.Fatal("ReadyUp worked after cleanup")
	}
}

func TestTimebankTimeoutTearsDownMatch(t *testing.T) {
	clock := newFakeClock()
	s := newTestService(0, 5, clock)
	connA, connB, _ := pairUp(t, s)

	waiting := s.ReadyUp(connA)
	if waiting == nil || !waiting.IsWaiting {
		t.Fatalf("first ready = %+v, want waiting", waiting)
	}

	clock.advance(6 * time.Second)

	timeout := s.ReadyUp(connA)
	if timeout == nil || !timeout.IsFinished {
		t.Fatalf("ready after expiry = %+v, want finished", timeout)
	}
	if timeout.Player1Card != nil || timeout.Player2Card != nil {
		t.Fatal("timeout conclusion revealed cards")
	}
	if timeout.GameWinner == nil || *timeout.GameWinner != domain.Player1 {
		t.Fatalf("timeout winner = %v, want Player1", timeout.GameWinner)
	}

	if s.ActiveGameCount() != 0 {
		t.Fatal("timed-out game still in active index")
	}
	if s.ReadyUp(connB) != nil {
		t.Fatal("opponent could still act after teardown")
	}
}

func TestFinishSignalSurvivesResume(t *testing.T) {
	s := newTestService(1, 0, newFakeClock())
	connA, connB, _ := pairUp(t, s)

	s.ReadyUp(connA)
	s.HandleDisconnect(connB)

	resume := s.JoinOrReconnect("bob", "conn-b2", "Bob")
	if resume == nil || !resume.IsResume {
		t.Fatalf("rejoin = %+v, want resume", resume)
	}

	resolved := s.ReadyUp("conn-b2")
	if resolved == nil || !resolved.IsFinished {
		t.Fatalf("final ready = %+v, want finished", resolved)
	}

	// the registry never cancels a resumable match, so the delayed finish
	// notice is still deliverable
	select {
	case <-resolved.Cancelled:
		t.Fatal("finish signal closed after a mid-game reconnect")
	default:
	}
}

func TestCleanupInstanceIdempotent(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())
	connA, _, started := pairUp(t, s)

	instance := s.activeGames[started.GameInstanceID]
	if instance == nil {
		t.Fatal("started game missing from active index")
	}

	s.CleanupInstance(instance)
	if s.ActiveGameCount() != 0 {
		t.Fatal("cleanup left the game active")
	}
	if s.ReadyUp(connA) != nil {
		t.Fatal("connection still mapped after cleanup")
	}
	select {
	case <-instance.Done():
	default:
		t.Fatal("explicit teardown did not cancel the match")
	}

	// second cleanup must be a no-op
	s.CleanupInstance(instance)
	if s.ActiveGameCount() != 0 || len(s.byConnection) != 0 || len(s.byPlayer) != 0 {
		t.Fatal("second cleanup changed registry state")
	}

	// freed players can start over
	if s.JoinOrReconnect("alice", "conn-a3", "Alice") == nil {
		t.Fatal("player could not rejoin after cleanup")
	}
}

func TestConcurrentJoinsKeepIndicesConsistent(t *testing.T) {
	s := newTestService(0, 0, newFakeClock())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			id := string(rune('a' + n))
			s.JoinOrReconnect("player-"+id, "conn-"+id, "Player "+id)
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.byConnection) != 8 || len(s.byPlayer) != 8 {
		t.Fatalf("indices: %d connections, %d players, want 8/8", len(s.byConnection), len(s.byPlayer))
	}
	if len(s.activeGames) != 4 {
		t.Fatalf("active games = %d, want 4", len(s.activeGames))
	}
	for conn, g := range s.byConnection {
		if g.RemovePlayer(conn) == nil {
			t.Fatalf("connection %s not seated in its indexed game", conn)
		}
	}
}
