// game/adjudicator.go - Answer validation and scoring
package game

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"quizrush/models"
)

// Speed multiplier bounds: a correct answer earns between half and one and a
// half times the base points depending on how fast it arrived.
const (
	minSpeedMultiplier = 0.5
	maxSpeedMultiplier = 1.5
)

// SubmitAnswer adjudicates one submission. Elapsed time is measured
// server-side from window open to receipt; the client-reported value is
// stored for display only and has no effect on deadline or scoring checks.
// The first valid submission per (question, player) wins.
func (o *Orchestrator) SubmitAnswer(roomID, playerID string, questionID uint, answerText string, clientTimeTakenMs int64) (*models.Answer, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != models.RoomInProgress {
		return nil, fmt.Errorf("room is %s: %w", r.Status, ErrInvalidStateTransition)
	}
	q := r.currentQuestionLocked()
	if q == nil || q.ID != questionID {
		return nil, fmt.Errorf("question %d is not open: %w", questionID, ErrStaleQuestion)
	}
	p := r.member(playerID)
	if p == nil {
		return nil, ErrNotAMember
	}
	if r.answered[playerID] {
		return nil, ErrAlreadyAnswered
	}

	now := o.now()
	elapsed := now.Sub(r.windowOpenedAt)
	limit := time.Duration(q.TimeLimit) * time.Second
	if elapsed > limit {
		return nil, fmt.Errorf("answer arrived %s after the deadline: %w", elapsed-limit, ErrDeadlineExceeded)
	}

	correct := answerMatches(q, answerText)
	points := 0
	if correct {
		points = scorePoints(q.Points, elapsed, limit)
	}

	answer := &models.Answer{
		RoomID:            r.ID,
		QuestionID:        q.ID,
		PlayerID:          playerID,
		AnswerText:        answerText,
		IsCorrect:         correct,
		TimeTakenMs:       elapsed.Milliseconds(),
		ClientTimeTakenMs: clientTimeTakenMs,
		PointsEarned:      points,
		AnsweredAt:        now,
	}

	// Score and answer move together: the in-memory update here and the
	// store write below are one transition under the room mutex.
	r.answered[playerID] = true
	p.TotalAnswers++
	if correct {
		p.CorrectAnswers++
		p.Score += points
		p.AnswerTimeMs += elapsed.Milliseconds()
	}
	if r.current == len(r.questions)-1 {
		p.Status = models.PlayerFinished
		p.FinishedAt = &now
	}

	if err := o.store.RecordAnswer(answer, p); err != nil {
		log.Printf("⚠️ Failed to persist answer for %s in room %s: %v", playerID, r.Code, err)
	}
	log.Printf("📝 Player %s answered Q%d in room %s (correct: %v, points: %d)", playerID, q.QuestionNumber, r.Code, correct, points)

	o.publishLocked(r, EventAnswerSubmitted, playerID)

	if r.allAnsweredLocked() {
		o.advanceLocked(r)
	}

	result := *answer
	return &result, nil
}

// answerMatches compares a submission to the correct answer. Free-text
// answers compare case-insensitively after trimming; option-keyed questions
// (multiple choice, true/false) require an exact option match.
func answerMatches(q *models.RoomQuestion, answerText string) bool {
	if q.QuestionType == models.QuestionText {
		return normalizeAnswer(answerText) == normalizeAnswer(q.CorrectAnswer)
	}
	return strings.TrimSpace(answerText) == q.CorrectAnswer
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// scorePoints applies the speed multiplier: base points scaled by how much
// of the window remained, clamped to [minSpeedMultiplier,
// maxSpeedMultiplier] so scores stay positive and bounded.
func scorePoints(basePoints int, elapsed, limit time.Duration) int {
	remaining := float64(limit-elapsed) / float64(limit)
	multiplier := minSpeedMultiplier + remaining
	if multiplier < minSpeedMultiplier {
		multiplier = minSpeedMultiplier
	}
	if multiplier > maxSpeedMultiplier {
		multiplier = maxSpeedMultiplier
	}
	return int(math.Round(float64(basePoints) * multiplier))
}
