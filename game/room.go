// game/room.go - In-memory room state
package game

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"quizrush/models"
)

// Settings are the per-room game options fixed at creation time.
type Settings struct {
	TotalQuestions   int  `json:"total_questions"`
	TimePerQuestion  int  `json:"time_per_question"` // seconds
	ShuffleQuestions bool `json:"shuffle_questions"`
	ShowLeaderboard  bool `json:"show_leaderboard"`
}

// withDefaults fills unset fields with the standard room defaults.
func (s Settings) withDefaults() Settings {
	if s.TotalQuestions <= 0 {
		s.TotalQuestions = 10
	}
	if s.TimePerQuestion <= 0 {
		s.TimePerQuestion = 30
	}
	return s
}

// Room is the live, authoritative state of one game session. All state
// transitions for a room are serialized through mu; there is no lock shared
// across rooms. Version increments on every successful transition and is the
// sequence number consumers use for idempotent apply.
type Room struct {
	ID         string
	Code       string
	GameType   string
	Difficulty string
	GradeLevel string
	CreatorID  string
	MaxPlayers int
	Settings   Settings

	Status    string
	Version   uint64
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time

	players   map[string]*models.RoomPlayer
	joinOrder []string

	// Question window state, owned by the sequencer methods
	questions      []models.RoomQuestion
	current        int // -1 before start, len(questions) once exhausted
	windowOpenedAt time.Time
	windowTimer    *time.Timer
	answered       map[string]bool // playerID -> answered current question

	result *models.GameResult

	mu sync.Mutex
}

// activeCount returns the number of members that have not left. Must be
// called with mu held.
func (r *Room) activeCount() int {
	n := 0
	for _, p := range r.players {
		if p.Status != models.PlayerLeft {
			n++
		}
	}
	return n
}

// member returns the non-left membership for playerID, or nil. Must be
// called with mu held.
func (r *Room) member(playerID string) *models.RoomPlayer {
	p, ok := r.players[playerID]
	if !ok || p.Status == models.PlayerLeft {
		return nil
	}
	return p
}

// playerList returns memberships in join order. Must be called with mu held.
func (r *Room) playerList() []models.RoomPlayer {
	list := make([]models.RoomPlayer, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		if p, ok := r.players[id]; ok {
			list = append(list, *p)
		}
	}
	return list
}

// allReadyLocked reports whether every non-left member is ready (or already
// playing/finished once the game has started). Must be called with mu held.
func (r *Room) allReadyLocked() bool {
	for _, p := range r.players {
		switch p.Status {
		case models.PlayerLeft, models.PlayerReady, models.PlayerPlaying, models.PlayerFinished:
		default:
			return false
		}
	}
	return true
}

const roomCodeLength = 6

// Room codes avoid ambiguous characters so they stay human-enterable.
const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateRoomCode() string {
	b := make([]byte, roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}
	return string(b)
}

// normalizeCode makes room-code lookup case-insensitive.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
