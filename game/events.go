// game/events.go - Per-room state-change broadcast hub
package game

import (
	"log"
	"sync"
	"time"

	"quizrush/models"
)

// Event types broadcast to room subscribers.
const (
	EventRoomCreated      = "room_created"
	EventPlayerJoined     = "player_joined"
	EventPlayerReady      = "player_ready"
	EventPlayerLeft       = "player_left"
	EventGameStarted      = "game_started"
	EventQuestionAdvanced = "question_advanced"
	EventAnswerSubmitted  = "answer_submitted"
	EventGameCompleted    = "game_completed"
	EventRoomCancelled    = "room_cancelled"
)

// PlayerView is the membership state included in snapshots.
type PlayerView struct {
	PlayerID       string `json:"player_id"`
	DisplayName    string `json:"display_name"`
	IsCreator      bool   `json:"is_creator"`
	Status         string `json:"status"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalAnswers   int    `json:"total_answers"`
	Rank           *int   `json:"rank,omitempty"`
}

// QuestionView is the current question as shown to clients. The correct
// answer is withheld; adjudication is server-side only.
type QuestionView struct {
	QuestionID     uint      `json:"question_id"`
	QuestionNumber int       `json:"question_number"`
	Text           string    `json:"text"`
	QuestionType   string    `json:"question_type"`
	Options        []string  `json:"options,omitempty"`
	Points         int       `json:"points"`
	TimeLimit      int       `json:"time_limit"`
	Deadline       time.Time `json:"deadline"`
	RemainingMs    int64     `json:"remaining_ms"`
}

// Snapshot is the full current room state delivered on every transition.
// Version is monotonic per room; consumers apply idempotently by comparing
// it, tolerating duplicate delivery.
type Snapshot struct {
	RoomID          string             `json:"room_id"`
	RoomCode        string             `json:"room_code"`
	GameType        string             `json:"game_type"`
	Status          string             `json:"status"`
	Version         uint64             `json:"version"`
	CreatorID       string             `json:"creator_id"`
	MaxPlayers      int                `json:"max_players"`
	Settings        Settings           `json:"settings"`
	Players         []PlayerView       `json:"players"`
	CurrentQuestion *QuestionView      `json:"current_question,omitempty"`
	Result          *models.GameResult `json:"result,omitempty"`
}

// Event is one state-change notification for a room.
type Event struct {
	Type     string    `json:"type"`
	RoomID   string    `json:"room_id"`
	PlayerID string    `json:"player_id,omitempty"`
	Snapshot *Snapshot `json:"snapshot"`
}

const subscriberBufferSize = 64

// Subscription is one consumer's handle on a room's event stream. Close it
// when done; the hub drops the subscriber and closes C.
type Subscription struct {
	C chan Event

	hub    *Hub
	roomID string
	once   sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}

// Hub fans room events out to that room's subscribers. Each Subscription is
// created per room and disposed explicitly; nothing is shared across
// unrelated rooms. Delivery is at-least-once per subscriber: sends never
// block, and a full buffer drops the event with a log line (the consumer
// recovers from the next snapshot, which always carries full state).
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a consumer for one room's events.
func (h *Hub) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, subscriberBufferSize),
		hub:    h,
		roomID: roomID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*Subscription]struct{})
	}
	h.subs[roomID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.roomID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.roomID)
		}
	}
	close(sub.C)
}

// Publish delivers an event to every subscriber of its room, non-blocking.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[evt.RoomID] {
		select {
		case sub.C <- evt:
		default:
			log.Printf("⚠️ Subscriber buffer full for room %s, dropping event type: %s", evt.RoomID, evt.Type)
		}
	}
}

// SubscriberCount reports how many consumers a room currently has.
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[roomID])
}
