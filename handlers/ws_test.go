package handlers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"quizrush/game"
	"quizrush/models"
)

// nullStore drops every persistence call; the live state machine is what the
// transport tests exercise.
type nullStore struct{}

func (nullStore) CreateRoom(*models.GameRoom, *models.RoomPlayer) error      { return nil }
func (nullStore) AddPlayer(*models.RoomPlayer) error                         { return nil }
func (nullStore) UpdatePlayerStatus(string, string, string, time.Time) error { return nil }
func (nullStore) MarkStarted(string, time.Time, []models.RoomQuestion) error { return nil }
func (nullStore) AdvanceQuestion(string, int) error                          { return nil }
func (nullStore) RecordAnswer(*models.Answer, *models.RoomPlayer) error      { return nil }
func (nullStore) MarkCancelled(string, time.Time) error                      { return nil }
func (nullStore) LogEvent(*models.RoomEvent) error                           { return nil }

func (nullStore) SaveResult(*models.GameResult, []models.RoomPlayer, time.Time) error {
	return nil
}

type staticBank struct{}

func (staticBank) Questions(gameType, gradeLevel, difficulty string, count int) ([]models.QuizQuestion, error) {
	qs := make([]models.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		qs = append(qs, models.QuizQuestion{
			ID:            uint(i + 1),
			GameType:      gameType,
			Text:          fmt.Sprintf("%d + %d = ?", i, i),
			QuestionType:  models.QuestionMultipleChoice,
			Options:       fmt.Sprintf(`["%d","%d"]`, 2*i, 2*i+1),
			CorrectAnswer: fmt.Sprintf("%d", 2*i),
			Points:        100,
			TimeLimit:     30,
		})
	}
	return qs, nil
}

func newTestWSServer() *WSServer {
	return NewWSServer(game.NewOrchestrator(nullStore{}, staticBank{}))
}

func queuedMessage(t *testing.T, c *Conn) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatalf("no message queued")
		return Message{}
	}
}

// A rejected operation must carry the room's authoritative snapshot so a
// client whose event stream dropped messages can resync without a reload.
func TestSendErrorCarriesRoomSnapshot(t *testing.T) {
	s := newTestWSServer()
	snap, err := s.orch.CreateRoom("alice", "Alice", "math_race", "3", "easy", 4, game.Settings{})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	c := &Conn{PlayerID: "alice", send: make(chan Message, 4), roomID: snap.RoomID}
	s.sendError(c, game.ErrAlreadyAnswered)

	msg := queuedMessage(t, c)
	if msg.Type != "error" {
		t.Fatalf("message type = %s, want error", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload is %T, want map", msg.Payload)
	}
	if payload["code"] != "already_answered" {
		t.Errorf("code = %v, want already_answered", payload["code"])
	}
	room, ok := payload["room"].(*game.Snapshot)
	if !ok {
		t.Fatalf("room payload is %T, want *game.Snapshot", payload["room"])
	}
	if room.RoomID != snap.RoomID || room.Version == 0 {
		t.Errorf("snapshot = room %s version %d, want room %s with a live version", room.RoomID, room.Version, snap.RoomID)
	}
}

func TestSendErrorWithoutRoom(t *testing.T) {
	s := newTestWSServer()
	c := &Conn{PlayerID: "alice", send: make(chan Message, 4)}

	s.sendError(c, game.ErrRoomNotFound)

	msg := queuedMessage(t, c)
	payload := msg.Payload.(map[string]interface{})
	if payload["code"] != "room_not_found" {
		t.Errorf("code = %v, want room_not_found", payload["code"])
	}
	if _, present := payload["room"]; present {
		t.Errorf("unattached connection should not carry a room snapshot")
	}
}

func TestSendErrorSuppressesGuardLoss(t *testing.T) {
	s := newTestWSServer()
	c := &Conn{PlayerID: "alice", send: make(chan Message, 4)}

	s.sendError(c, game.ErrConcurrentTransitionLost)
	s.sendError(c, fmt.Errorf("window already closed: %w", game.ErrConcurrentTransitionLost))

	select {
	case msg := <-c.send:
		t.Fatalf("guard loss surfaced to the client: %+v", msg)
	default:
	}
}

func TestErrorCodes(t *testing.T) {
	cases := map[string]error{
		"room_not_found":       game.ErrRoomNotFound,
		"room_full":            game.ErrRoomFull,
		"invalid_state":        game.ErrInvalidStateTransition,
		"insufficient_content": game.ErrInsufficientContent,
		"stale_question":       fmt.Errorf("question 7 is not open: %w", game.ErrStaleQuestion),
		"already_answered":     game.ErrAlreadyAnswered,
		"deadline_exceeded":    game.ErrDeadlineExceeded,
		"not_a_member":         game.ErrNotAMember,
		"internal":             errors.New("store unavailable"),
	}
	for want, err := range cases {
		if got := errorCode(err); got != want {
			t.Errorf("errorCode(%v) = %s, want %s", err, got, want)
		}
	}
}
