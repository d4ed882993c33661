// models/room.go - Game Room Records
package models

import (
	"time"
)

// Room status values. Transitions are monotonic: a room never moves back to
// an earlier status, and completed/cancelled are terminal.
const (
	RoomWaiting    = "waiting"
	RoomInProgress = "in_progress"
	RoomCompleted  = "completed"
	RoomCancelled  = "cancelled"
)

// GameRoom represents one multiplayer game session
type GameRoom struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	RoomCode   string `json:"room_code" gorm:"index;not null;size:12"`
	GameType   string `json:"game_type" gorm:"not null;size:50;index"`
	Difficulty string `json:"difficulty" gorm:"size:20"`
	GradeLevel string `json:"grade_level" gorm:"size:20"`
	CreatorID  string `json:"creator_id" gorm:"not null;index;size:100"`
	MaxPlayers int    `json:"max_players" gorm:"default:10"`

	// Settings
	TotalQuestions   int  `json:"total_questions" gorm:"default:10"`
	TimePerQuestion  int  `json:"time_per_question" gorm:"default:30"` // seconds
	ShuffleQuestions bool `json:"shuffle_questions" gorm:"default:true"`
	ShowLeaderboard  bool `json:"show_leaderboard" gorm:"default:true"`

	// Game state
	Status          string `json:"status" gorm:"default:'waiting';size:20;index"`
	CurrentQuestion int    `json:"current_question" gorm:"default:-1"` // -1 before start

	// Timestamps
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships (loaded via Preload, not enforced at DB level on parent)
	Players []RoomPlayer `json:"players,omitempty" gorm:"-"`
}

func (GameRoom) TableName() string {
	return "game_rooms"
}

// IsActive reports whether the room is still joinable or running
func (r *GameRoom) IsActive() bool {
	return r.Status == RoomWaiting || r.Status == RoomInProgress
}

// Duration returns how long the game lasted
func (r *GameRoom) Duration() time.Duration {
	if r.StartedAt == nil || r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(*r.StartedAt)
}

// ActivePlayerCount returns number of players that have not left
func (r *GameRoom) ActivePlayerCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Status != PlayerLeft {
			count++
		}
	}
	return count
}
