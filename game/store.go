// game/store.go - External collaborator interfaces
package game

import (
	"time"

	"quizrush/models"
)

// Store is the durable record store for rooms, players, questions, answers
// and results. The in-memory room state machine is authoritative; the store
// is the persistence boundary and carries the uniqueness constraints that
// back the membership and first-submission-wins invariants. Implementations
// live in services (gorm/postgres) and in-package fakes back the tests.
type Store interface {
	CreateRoom(room *models.GameRoom, creator *models.RoomPlayer) error
	AddPlayer(player *models.RoomPlayer) error
	UpdatePlayerStatus(roomID, playerID, status string, at time.Time) error
	MarkStarted(roomID string, at time.Time, questions []models.RoomQuestion) error
	AdvanceQuestion(roomID string, questionNumber int) error

	// RecordAnswer persists the answer and the player's updated score/stats
	// in one transaction: no answer without its score update, and vice versa.
	RecordAnswer(answer *models.Answer, player *models.RoomPlayer) error

	SaveResult(result *models.GameResult, players []models.RoomPlayer, at time.Time) error
	MarkCancelled(roomID string, at time.Time) error
	LogEvent(event *models.RoomEvent) error
}

// QuestionBank supplies pre-authored question content for a starting game.
// Returns at least count questions matching the filters or an error.
type QuestionBank interface {
	Questions(gameType, gradeLevel, difficulty string, count int) ([]models.QuizQuestion, error)
}
