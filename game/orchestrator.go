// game/orchestrator.go - Room state-machine façade
//
// Each room is an independently evolving state machine; transitions within a
// room are serialized by the room mutex, and every successful transition
// bumps the room version and emits a snapshot to subscribers. Failed guard
// checks return a typed error and emit nothing.
package game

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"quizrush/models"
)

// DefaultMinPlayers is the starting threshold for game types without an
// explicit entry.
const DefaultMinPlayers = 2

type Orchestrator struct {
	mu          sync.RWMutex
	roomsByID   map[string]*Room
	roomsByCode map[string]*Room

	store Store
	bank  QuestionBank
	hub   *Hub

	minPlayers map[string]int

	// now is swapped in tests to control deadlines
	now func() time.Time
}

func NewOrchestrator(store Store, bank QuestionBank) *Orchestrator {
	return &Orchestrator{
		roomsByID:   make(map[string]*Room),
		roomsByCode: make(map[string]*Room),
		store:       store,
		bank:        bank,
		hub:         NewHub(),
		minPlayers:  make(map[string]int),
		now:         time.Now,
	}
}

// Hub exposes the per-room subscription channel.
func (o *Orchestrator) Hub() *Hub {
	return o.hub
}

// SetMinPlayers overrides the start threshold for one game type.
func (o *Orchestrator) SetMinPlayers(gameType string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.minPlayers[gameType] = n
}

func (o *Orchestrator) minPlayersFor(gameType string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if n, ok := o.minPlayers[gameType]; ok {
		return n
	}
	return DefaultMinPlayers
}

// room looks up live state by room ID.
func (o *Orchestrator) room(roomID string) (*Room, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.roomsByID[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Snapshot returns the current authoritative state of a room.
func (o *Orchestrator) Snapshot(roomID string) (*Snapshot, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return o.snapshotLocked(r), nil
}

// Result returns the final result of a completed room.
func (o *Orchestrator) Result(roomID string) (*models.GameResult, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil, ErrInvalidStateTransition
	}
	res := *r.result
	return &res, nil
}

// StartGame validates readiness and opens question window 0. Only the room
// creator may start, every member must be ready, and the question bank must
// be able to supply the full set.
func (o *Orchestrator) StartGame(roomID, callerID string) (*Snapshot, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	min := o.minPlayersFor(r.GameType)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != models.RoomWaiting {
		return nil, fmt.Errorf("room is %s: %w", r.Status, ErrInvalidStateTransition)
	}
	if callerID != r.CreatorID {
		return nil, fmt.Errorf("only the creator can start: %w", ErrInvalidStateTransition)
	}
	if r.activeCount() < min {
		return nil, fmt.Errorf("need at least %d players: %w", min, ErrInvalidStateTransition)
	}
	if !r.allReadyLocked() {
		return nil, fmt.Errorf("all players must be ready: %w", ErrInvalidStateTransition)
	}

	content, err := o.bank.Questions(r.GameType, r.GradeLevel, r.Difficulty, r.Settings.TotalQuestions)
	if err != nil {
		return nil, err
	}
	if len(content) < r.Settings.TotalQuestions {
		return nil, fmt.Errorf("%d of %d questions available: %w", len(content), r.Settings.TotalQuestions, ErrInsufficientContent)
	}

	now := o.now()
	r.Status = models.RoomInProgress
	r.StartedAt = &now
	r.questions = r.buildQuestionSet(content)
	for _, p := range r.players {
		if p.Status != models.PlayerLeft {
			p.Status = models.PlayerPlaying
		}
	}
	r.current = 0
	o.openWindowLocked(r)

	// The store gets its own copy; in-memory question IDs must stay stable
	// because submissions are validated against them.
	persisted := append([]models.RoomQuestion(nil), r.questions...)
	if err := o.store.MarkStarted(r.ID, now, persisted); err != nil {
		log.Printf("⚠️ Failed to persist game start for room %s: %v", r.Code, err)
	}
	log.Printf("🎮 Game started in room %s with %d players, %d questions", r.Code, r.activeCount(), len(r.questions))

	o.publishLocked(r, EventGameStarted, callerID)
	return o.snapshotLocked(r), nil
}

// EndGame lets the creator force-end a running game; scores accumulated so
// far are finalized as-is.
func (o *Orchestrator) EndGame(roomID, callerID string) (*models.GameResult, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if callerID != r.CreatorID {
		return nil, fmt.Errorf("only the creator can end the game: %w", ErrInvalidStateTransition)
	}
	if r.Status != models.RoomInProgress {
		return nil, fmt.Errorf("room is %s: %w", r.Status, ErrInvalidStateTransition)
	}

	o.finalizeLocked(r)
	res := *r.result
	return &res, nil
}

// snapshotLocked builds the full room snapshot. Must be called with the room
// mutex held.
func (o *Orchestrator) snapshotLocked(r *Room) *Snapshot {
	snap := &Snapshot{
		RoomID:     r.ID,
		RoomCode:   r.Code,
		GameType:   r.GameType,
		Status:     r.Status,
		Version:    r.Version,
		CreatorID:  r.CreatorID,
		MaxPlayers: r.MaxPlayers,
		Settings:   r.Settings,
	}
	for _, id := range r.joinOrder {
		p := r.players[id]
		snap.Players = append(snap.Players, PlayerView{
			PlayerID:       p.PlayerID,
			DisplayName:    p.DisplayName,
			IsCreator:      p.IsCreator,
			Status:         p.Status,
			Score:          p.Score,
			CorrectAnswers: p.CorrectAnswers,
			TotalAnswers:   p.TotalAnswers,
			Rank:           p.Rank,
		})
	}
	if q := r.currentQuestionLocked(); q != nil {
		deadline := r.windowOpenedAt.Add(time.Duration(q.TimeLimit) * time.Second)
		remaining := deadline.Sub(o.now())
		if remaining < 0 {
			remaining = 0
		}
		snap.CurrentQuestion = &QuestionView{
			QuestionID:     q.ID,
			QuestionNumber: q.QuestionNumber,
			Text:           q.Text,
			QuestionType:   q.QuestionType,
			Options:        q.OptionList(),
			Points:         q.Points,
			TimeLimit:      q.TimeLimit,
			Deadline:       deadline,
			RemainingMs:    remaining.Milliseconds(),
		}
	}
	if r.result != nil {
		res := *r.result
		snap.Result = &res
	}
	return snap
}

// publishLocked bumps the room version, broadcasts the new snapshot and
// appends to the durable event log. Must be called with the room mutex held,
// after the transition has been applied.
func (o *Orchestrator) publishLocked(r *Room, eventType, playerID string) {
	r.Version++
	snap := o.snapshotLocked(r)

	var questionIndex *int
	if r.current >= 0 && r.current < len(r.questions) {
		ix := r.current
		questionIndex = &ix
	}
	data, _ := json.Marshal(map[string]interface{}{"status": r.Status})
	if err := o.store.LogEvent(&models.RoomEvent{
		RoomID:        r.ID,
		EventType:     eventType,
		PlayerID:      playerID,
		QuestionIndex: questionIndex,
		EventData:     string(data),
		SequenceNum:   r.Version,
	}); err != nil {
		log.Printf("⚠️ Failed to log %s event for room %s: %v", eventType, r.Code, err)
	}

	o.hub.Publish(Event{
		Type:     eventType,
		RoomID:   r.ID,
		PlayerID: playerID,
		Snapshot: snap,
	})
}
