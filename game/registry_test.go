package game

import (
	"errors"
	"strings"
	"testing"

	"quizrush/models"
)

// The creation event must hold sequence 1 in the durable log; joins landing
// while the room is being set up may not be logged ahead of it.
func TestRoomCreatedEventHoldsFirstSequence(t *testing.T) {
	env := newTestEnv(t, 10)

	snap, err := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 10, testSettings(3))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := env.orch.JoinByCode(snap.RoomCode, "bob", "Bob"); err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}

	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	if len(env.store.events) < 2 {
		t.Fatalf("logged %d events, want creation and join", len(env.store.events))
	}
	first := env.store.events[0]
	if first.EventType != EventRoomCreated || first.SequenceNum != 1 {
		t.Errorf("first event = %s seq %d, want %s seq 1", first.EventType, first.SequenceNum, EventRoomCreated)
	}
	if env.store.events[1].EventType != EventPlayerJoined {
		t.Errorf("second event = %s, want %s", env.store.events[1].EventType, EventPlayerJoined)
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	env := newTestEnv(t, 10)

	snap, err := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 0, Settings{})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if snap.Status != models.RoomWaiting {
		t.Errorf("status = %s, want %s", snap.Status, models.RoomWaiting)
	}
	if snap.MaxPlayers != 10 {
		t.Errorf("max players = %d, want capped default 10", snap.MaxPlayers)
	}
	if snap.Settings.TotalQuestions != 10 || snap.Settings.TimePerQuestion != 30 {
		t.Errorf("settings not defaulted: %+v", snap.Settings)
	}
	if len(snap.Players) != 1 || !snap.Players[0].IsCreator {
		t.Errorf("creator not auto-enrolled: %+v", snap.Players)
	}
	if snap.CurrentQuestion != nil {
		t.Errorf("no question should be open before start")
	}
	if snap.Version == 0 {
		t.Errorf("creation should bump the room version")
	}
}

func TestRoomCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateRoomCode()
		if len(code) != roomCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), roomCodeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(roomCodeChars, ch) {
				t.Fatalf("code %q contains disallowed character %q", code, ch)
			}
		}
	}
}

func TestFindRoomByCodeCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, 10)

	snap, err := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 4, testSettings(3))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	found, err := env.orch.FindRoomByCode("  " + strings.ToLower(snap.RoomCode) + " ")
	if err != nil {
		t.Fatalf("FindRoomByCode: %v", err)
	}
	if found.RoomID != snap.RoomID {
		t.Errorf("resolved room %s, want %s", found.RoomID, snap.RoomID)
	}

	if _, err := env.orch.FindRoomByCode("NOSUCH"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown code error = %v, want ErrRoomNotFound", err)
	}
}

func TestCompletedRoomCodeUnresolvable(t *testing.T) {
	env := newTestEnv(t, 3)
	roomID := startedGame(t, env, 3, "alice", "bob")

	snap, err := env.orch.Snapshot(roomID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, err := env.orch.EndGame(roomID, "alice"); err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	if _, err := env.orch.FindRoomByCode(snap.RoomCode); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("completed room code resolved, want ErrRoomNotFound, got %v", err)
	}

	// Result stays readable by room ID.
	if _, err := env.orch.Result(roomID); err != nil {
		t.Errorf("Result after completion: %v", err)
	}
}

func TestActiveRoomsListsOnlyLive(t *testing.T) {
	env := newTestEnv(t, 3)

	a, _ := env.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 4, testSettings(3))
	roomID := startedGame(t, env, 3, "carol", "dave")
	if _, err := env.orch.EndGame(roomID, "carol"); err != nil {
		t.Fatalf("EndGame: %v", err)
	}

	active := env.orch.ActiveRooms()
	if len(active) != 1 {
		t.Fatalf("active rooms = %d, want 1", len(active))
	}
	if active[0].RoomID != a.RoomID {
		t.Errorf("active room %s, want %s", active[0].RoomID, a.RoomID)
	}
}
