package game

import (
	"errors"
	"testing"
	"time"

	"quizrush/models"
)

func TestExpireIdleRooms(t *testing.T) {
	env := newTestEnv(t, 3)
	snap, _ := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 4, testSettings(3))

	if n := env.orch.ExpireIdleRooms(30 * time.Minute); n != 0 {
		t.Fatalf("expired %d fresh rooms", n)
	}

	env.clock.Advance(31 * time.Minute)
	if n := env.orch.ExpireIdleRooms(30 * time.Minute); n != 1 {
		t.Fatalf("expired %d rooms, want 1", n)
	}

	after, _ := env.orch.Snapshot(snap.RoomID)
	if after.Status != models.RoomCancelled {
		t.Errorf("idle room status = %s, want cancelled", after.Status)
	}
}

func TestExpireSkipsRunningRooms(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	env.clock.Advance(2 * time.Hour)
	if n := env.orch.ExpireIdleRooms(30 * time.Minute); n != 0 {
		t.Errorf("expired %d in-progress rooms", n)
	}

	snap, _ := env.orch.Snapshot(roomID)
	if snap.Status != models.RoomInProgress {
		t.Errorf("room status = %s, want in_progress", snap.Status)
	}
}

func TestEvictFinishedRooms(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")
	if _, err := env.orch.EndGame(roomID, "alice"); err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	// Within the retention window the result stays readable in memory.
	if n := env.orch.EvictFinishedRooms(time.Hour); n != 0 {
		t.Fatalf("evicted %d rooms inside retention", n)
	}
	if _, err := env.orch.Result(roomID); err != nil {
		t.Fatalf("Result inside retention: %v", err)
	}

	env.clock.Advance(2 * time.Hour)
	if n := env.orch.EvictFinishedRooms(time.Hour); n != 1 {
		t.Fatalf("evicted %d rooms, want 1", n)
	}

	if _, err := env.orch.Result(roomID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("evicted room lookup = %v, want ErrRoomNotFound", err)
	}
}
