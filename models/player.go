// models/player.go - Room Membership Records
package models

import (
	"time"
)

// Player status values. Forward-only: joined→ready→playing→finished, or
// →left from any non-terminal state. Leaving keeps score history intact.
const (
	PlayerJoined   = "joined"
	PlayerReady    = "ready"
	PlayerPlaying  = "playing"
	PlayerFinished = "finished"
	PlayerLeft     = "left"
)

// RoomPlayer represents a player's membership in a game room.
// A (room_id, player_id) pair is unique (enforced by index in migrations).
type RoomPlayer struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	RoomID      string `json:"room_id" gorm:"not null;index;size:36"`
	PlayerID    string `json:"player_id" gorm:"not null;index;size:100"`
	DisplayName string `json:"display_name" gorm:"size:100"`
	IsCreator   bool   `json:"is_creator" gorm:"default:false"`

	Status string `json:"status" gorm:"default:'joined';size:20"`

	// Performance stats. Score is monotonically non-decreasing while the
	// room is in progress.
	Score          int   `json:"score" gorm:"default:0"`
	CorrectAnswers int   `json:"correct_answers" gorm:"default:0"`
	TotalAnswers   int   `json:"total_answers" gorm:"default:0"`
	AnswerTimeMs   int64 `json:"answer_time_ms" gorm:"default:0"` // cumulative, correct answers only
	Rank           *int  `json:"rank"`                            // nil until finalized

	// Timestamps
	JoinedAt   time.Time  `json:"joined_at"`
	FinishedAt *time.Time `json:"finished_at"`
	LeftAt     *time.Time `json:"left_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RoomPlayer) TableName() string {
	return "room_players"
}

// AccuracyRate returns percentage of correct answers
func (p *RoomPlayer) AccuracyRate() float64 {
	if p.TotalAnswers == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.TotalAnswers) * 100
}
