// models/question.go - Question Bank and Per-Room Question Records
package models

import (
	"encoding/json"
	"time"
)

// Question types
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionText           = "text"
)

// QuizQuestion is a pre-authored question in the content bank, filtered by
// (game_type, grade_level, difficulty, subject) when a game starts.
type QuizQuestion struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	GameType      string    `json:"game_type" gorm:"not null;size:50;index"`
	GradeLevel    string    `json:"grade_level" gorm:"size:20;index"`
	Difficulty    string    `json:"difficulty" gorm:"default:'medium';size:20;index"`
	Subject       string    `json:"subject" gorm:"size:50;index"`
	Text          string    `json:"text" gorm:"not null;type:text"`
	QuestionType  string    `json:"question_type" gorm:"default:'multiple_choice';size:30"`
	Options       string    `json:"options" gorm:"type:text"` // JSON array, empty for free text
	CorrectAnswer string    `json:"correct_answer" gorm:"not null;size:500"`
	Points        int       `json:"points" gorm:"default:100"`
	TimeLimit     int       `json:"time_limit" gorm:"default:30"` // seconds
	CreatedAt     time.Time `json:"created_at"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// RoomQuestion is a question assigned to a room at start time. The set is
// fixed (and optionally shuffled) once; question_number is 0-indexed and
// contiguous within a room.
type RoomQuestion struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RoomID         string    `json:"room_id" gorm:"not null;index;size:36"`
	QuestionNumber int       `json:"question_number" gorm:"not null"`
	Text           string    `json:"text" gorm:"not null;type:text"`
	QuestionType   string    `json:"question_type" gorm:"size:30"`
	Options        string    `json:"options" gorm:"type:text"` // JSON array
	CorrectAnswer  string    `json:"correct_answer" gorm:"not null;size:500"`
	Points         int       `json:"points" gorm:"default:100"`
	TimeLimit      int       `json:"time_limit" gorm:"default:30"` // seconds
	CreatedAt      time.Time `json:"created_at"`
}

func (RoomQuestion) TableName() string {
	return "room_questions"
}

// OptionList decodes the JSON options column. Returns nil for free-text
// questions.
func (q *RoomQuestion) OptionList() []string {
	if q.Options == "" {
		return nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
		return nil
	}
	return opts
}
