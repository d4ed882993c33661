package game

import (
	"errors"
	"testing"
	"time"

	"quizrush/models"
)

// setStats mutates a player's accumulated stats directly to set up ranking
// scenarios without replaying a full game.
func setStats(t *testing.T, o *Orchestrator, roomID, playerID string, score, correct int, answerTimeMs int64) {
	t.Helper()
	r, err := o.room(roomID)
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		t.Fatalf("no player %s", playerID)
	}
	p.Score = score
	p.CorrectAnswers = correct
	p.AnswerTimeMs = answerTimeMs
}

func ranksOf(t *testing.T, o *Orchestrator, roomID string) map[string]int {
	t.Helper()
	snap, err := o.Snapshot(roomID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	ranks := make(map[string]int)
	for _, p := range snap.Players {
		if p.Rank == nil {
			t.Fatalf("player %s has no rank after finalize", p.PlayerID)
		}
		ranks[p.PlayerID] = *p.Rank
	}
	return ranks
}

func TestTieBreakByCorrectAnswers(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	// Equal scores; bob answered more questions correctly.
	setStats(t, env.orch, roomID, "alice", 300, 2, 4000)
	setStats(t, env.orch, roomID, "bob", 300, 3, 9000)

	result, err := env.orch.EndGame(roomID, "alice")
	if err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	if result.WinnerID != "bob" {
		t.Errorf("winner = %s, want bob", result.WinnerID)
	}
	ranks := ranksOf(t, env.orch, roomID)
	if ranks["bob"] != 1 || ranks["alice"] != 2 {
		t.Errorf("ranks = %v, want bob first", ranks)
	}
}

func TestTieBreakByAnswerTime(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	// Same score and correct count; alice was faster in total.
	setStats(t, env.orch, roomID, "alice", 200, 2, 3000)
	setStats(t, env.orch, roomID, "bob", 200, 2, 7000)

	result, _ := env.orch.EndGame(roomID, "alice")
	if result.WinnerID != "alice" {
		t.Errorf("winner = %s, want faster alice", result.WinnerID)
	}
}

func TestTieBreakByPlayerID(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "zoe", "adam")

	setStats(t, env.orch, roomID, "zoe", 100, 1, 2000)
	setStats(t, env.orch, roomID, "adam", 100, 1, 2000)

	result, _ := env.orch.EndGame(roomID, "zoe")
	if result.WinnerID != "adam" {
		t.Errorf("winner = %s, want lexicographically first adam", result.WinnerID)
	}
}

func TestLeftPlayersRankLast(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob", "carol")

	// Carol built the biggest score, then forfeited by leaving.
	setStats(t, env.orch, roomID, "carol", 900, 3, 1000)
	setStats(t, env.orch, roomID, "alice", 100, 1, 5000)
	setStats(t, env.orch, roomID, "bob", 50, 1, 8000)
	if err := env.orch.LeaveGame(roomID, "carol"); err != nil {
		t.Fatalf("LeaveGame: %v", err)
	}

	result, err := env.orch.EndGame(roomID, "alice")
	if err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	if result.WinnerID != "alice" {
		t.Errorf("winner = %s, want alice", result.WinnerID)
	}
	ranks := ranksOf(t, env.orch, roomID)
	if ranks["carol"] != 3 {
		t.Errorf("carol rank = %d, want last despite top score", ranks["carol"])
	}

	// The forfeiting player's score still appears in the final tally.
	scores := result.ScoreMap()
	if scores["carol"] != 900 {
		t.Errorf("carol final score = %d, want 900", scores["carol"])
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	first, err := env.orch.EndGame(roomID, "alice")
	if err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	// A second finalize trigger must not recompute anything.
	env.clock.Advance(time.Hour)
	if _, err := env.orch.EndGame(roomID, "alice"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("second EndGame error = %v, want ErrInvalidStateTransition", err)
	}

	second, err := env.orch.Result(roomID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if *second != *first {
		t.Errorf("result changed between reads:\n%+v\n%+v", first, second)
	}

	env.store.mu.Lock()
	saved := len(env.store.results)
	env.store.mu.Unlock()
	if saved != 1 {
		t.Errorf("results persisted = %d, want 1", saved)
	}
}

func TestEndGameGuards(t *testing.T) {
	env := newTestEnv(t, 3)
	snap, _ := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 4, testSettings(3))

	// No game running yet.
	if _, err := env.orch.EndGame(snap.RoomID, "alice"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("EndGame on waiting room = %v, want ErrInvalidStateTransition", err)
	}

	roomID := startedGame(t, env, 3, "carol", "dave")
	if _, err := env.orch.EndGame(roomID, "dave"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("non-creator EndGame = %v, want ErrInvalidStateTransition", err)
	}
}

func TestResultDuration(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	env.clock.Advance(95 * time.Second)
	result, err := env.orch.EndGame(roomID, "alice")
	if err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	if result.DurationSeconds != 95 {
		t.Errorf("duration = %ds, want 95", result.DurationSeconds)
	}

	snap, _ := env.orch.Snapshot(roomID)
	for _, p := range snap.Players {
		if p.Status != models.PlayerFinished {
			t.Errorf("player %s status = %s after completion, want finished", p.PlayerID, p.Status)
		}
	}
}
