// services/question_bank.go - Question content provider
package services

import (
	"fmt"

	"quizrush/database"
	"quizrush/models"
)

// QuestionBank serves pre-authored questions from the quiz_questions table.
// It implements game.QuestionBank; the caller decides whether the returned
// count is sufficient to start.
type QuestionBank struct{}

func NewQuestionBank() *QuestionBank {
	return &QuestionBank{}
}

// Questions returns the full matching pool so the sequencer's seeded
// shuffle picks from everything available, not a fixed prefix. Grade level
// and difficulty are optional narrowing filters; game type is not. The
// count parameter is advisory; the caller enforces sufficiency.
func (b *QuestionBank) Questions(gameType, gradeLevel, difficulty string, count int) ([]models.QuizQuestion, error) {
	db := database.GetDB()

	query := db.Model(&models.QuizQuestion{}).Where("game_type = ?", gameType)
	if gradeLevel != "" {
		query = query.Where("grade_level = ?", gradeLevel)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var questions []models.QuizQuestion
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	return questions, nil
}
