// models/result.go - Final Game Results and Room Event Log
package models

import (
	"encoding/json"
	"time"
)

// GameResult is the immutable record created exactly once when a room
// transitions to completed.
type GameResult struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	RoomID          string    `json:"room_id" gorm:"uniqueIndex;not null;size:36"`
	WinnerID        string    `json:"winner_id" gorm:"size:100"`
	FinalScores     string    `json:"final_scores" gorm:"type:text"` // JSON map playerID -> score
	TotalQuestions  int       `json:"total_questions"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

func (GameResult) TableName() string {
	return "game_results"
}

// ScoreMap decodes the final_scores JSON column
func (r *GameResult) ScoreMap() map[string]int {
	scores := make(map[string]int)
	if r.FinalScores != "" {
		_ = json.Unmarshal([]byte(r.FinalScores), &scores)
	}
	return scores
}

// RoomEvent is one entry in a room's persisted event log. SequenceNum is the
// room version at emission, so events replay in causal order within a room.
type RoomEvent struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	RoomID    string `json:"room_id" gorm:"not null;index;size:36"`
	EventType string `json:"event_type" gorm:"not null;size:50;index"` // player_joined, player_ready, game_started, question_advanced, answer_submitted, player_left, game_completed, room_cancelled
	PlayerID  string `json:"player_id" gorm:"size:100"`                // empty for room-level events

	QuestionIndex *int   `json:"question_index"`              // active question when the event occurred
	EventData     string `json:"event_data" gorm:"type:text"` // JSON with event-specific data

	SequenceNum uint64    `json:"sequence_num" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (RoomEvent) TableName() string {
	return "room_events"
}
