// models/answer.go - Answer Submission Records
package models

import (
	"time"
)

// Answer is one player's submission for one room question. At most one
// answer exists per (question_id, player_id); the first valid submission
// wins and later ones are rejected, never overwritten.
type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	RoomID     string `json:"room_id" gorm:"not null;index;size:36"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	PlayerID   string `json:"player_id" gorm:"not null;index;size:100"`

	AnswerText string `json:"answer_text" gorm:"size:500"`
	IsCorrect  bool   `json:"is_correct"` // derived server-side, never client-supplied

	// Server-measured elapsed time from window open to receipt. The client
	// value is retained for display only and is never trusted for scoring.
	TimeTakenMs       int64 `json:"time_taken_ms"`
	ClientTimeTakenMs int64 `json:"client_time_taken_ms"`

	PointsEarned int       `json:"points_earned"`
	AnsweredAt   time.Time `json:"answered_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Answer) TableName() string {
	return "answers"
}
