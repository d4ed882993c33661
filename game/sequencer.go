// game/sequencer.go - Question ordering and window timing
package game

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log"
	mathrand "math/rand"
	"time"

	"quizrush/models"
)

// buildQuestionSet fixes the room's question list at start time. Shuffling
// is seeded from the room ID, so a re-derived order (e.g. after reconnect)
// is reproducible.
func (r *Room) buildQuestionSet(content []models.QuizQuestion) []models.RoomQuestion {
	if r.Settings.ShuffleQuestions {
		sum := sha256.Sum256([]byte(r.ID))
		seed := int64(binary.BigEndian.Uint64(sum[:8]))
		rng := mathrand.New(mathrand.NewSource(seed))
		rng.Shuffle(len(content), func(i, j int) {
			content[i], content[j] = content[j], content[i]
		})
	}
	if len(content) > r.Settings.TotalQuestions {
		content = content[:r.Settings.TotalQuestions]
	}

	questions := make([]models.RoomQuestion, 0, len(content))
	for i, q := range content {
		timeLimit := q.TimeLimit
		if r.Settings.TimePerQuestion > 0 {
			timeLimit = r.Settings.TimePerQuestion
		}
		questions = append(questions, models.RoomQuestion{
			ID:             uint(i + 1), // store assigns real keys; index keeps tests deterministic
			RoomID:         r.ID,
			QuestionNumber: i,
			Text:           q.Text,
			QuestionType:   q.QuestionType,
			Options:        q.Options,
			CorrectAnswer:  q.CorrectAnswer,
			Points:         q.Points,
			TimeLimit:      timeLimit,
		})
	}
	return questions
}

// currentQuestionLocked returns the question whose window is open, or nil
// before start and after exhaustion. Must be called with the room mutex
// held.
func (r *Room) currentQuestionLocked() *models.RoomQuestion {
	if r.Status != models.RoomInProgress || r.current < 0 || r.current >= len(r.questions) {
		return nil
	}
	return &r.questions[r.current]
}

// CurrentQuestion returns the open question for a room, or nil.
func (o *Orchestrator) CurrentQuestion(roomID string) (*models.RoomQuestion, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.currentQuestionLocked()
	if q == nil {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

// TimeRemaining reports how long the current question window stays open. It
// is a pure function of the wall clock; zero means no window is open.
func (o *Orchestrator) TimeRemaining(roomID string) (time.Duration, error) {
	r, err := o.room(roomID)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.currentQuestionLocked()
	if q == nil {
		return 0, nil
	}
	deadline := r.windowOpenedAt.Add(time.Duration(q.TimeLimit) * time.Second)
	remaining := deadline.Sub(o.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// openWindowLocked starts the clock for the current question and arms the
// deadline timer. Must be called with the room mutex held.
func (o *Orchestrator) openWindowLocked(r *Room) {
	q := &r.questions[r.current]
	r.windowOpenedAt = o.now()
	r.answered = make(map[string]bool)

	r.stopWindowTimerLocked()
	expected := r.current
	r.windowTimer = time.AfterFunc(time.Duration(q.TimeLimit)*time.Second, func() {
		if err := o.ForceAdvance(r.ID, expected); err != nil {
			// Lost the race to the all-answered path, nothing to report.
			return
		}
	})
	log.Printf("⏱️ Question %d/%d window open in room %s (%ds)", r.current+1, len(r.questions), r.Code, q.TimeLimit)
}

func (r *Room) stopWindowTimerLocked() {
	if r.windowTimer != nil {
		r.windowTimer.Stop()
		r.windowTimer = nil
	}
}

// allAnsweredLocked reports whether every eligible (non-left) member has
// answered the open question. Must be called with the room mutex held.
func (r *Room) allAnsweredLocked() bool {
	if r.currentQuestionLocked() == nil {
		return false
	}
	eligible := 0
	answered := 0
	for _, p := range r.players {
		if p.Status == models.PlayerLeft {
			continue
		}
		eligible++
		if r.answered[p.PlayerID] {
			answered++
		}
	}
	return eligible > 0 && answered == eligible
}

// ForceAdvance closes the question window identified by expectedQuestion and
// moves on. It is the deadline-driven trigger; the all-answered path races
// it, and the guard makes the losing caller a no-op
// (ErrConcurrentTransitionLost).
func (o *Orchestrator) ForceAdvance(roomID string, expectedQuestion int) error {
	r, err := o.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != models.RoomInProgress {
		return fmt.Errorf("room %s: %w", r.Status, ErrConcurrentTransitionLost)
	}
	if r.current != expectedQuestion {
		return fmt.Errorf("window already closed: %w", ErrConcurrentTransitionLost)
	}

	o.advanceLocked(r)
	return nil
}

// advanceLocked moves to the next question or finalizes when the set is
// exhausted. Both advance triggers funnel through here, with the room mutex
// held, so exactly one transition wins per window.
func (o *Orchestrator) advanceLocked(r *Room) {
	r.stopWindowTimerLocked()
	r.current++

	if r.current >= len(r.questions) {
		o.finalizeLocked(r)
		return
	}

	o.openWindowLocked(r)
	if err := o.store.AdvanceQuestion(r.ID, r.current); err != nil {
		log.Printf("⚠️ Failed to persist question advance for room %s: %v", r.Code, err)
	}
	log.Printf("➡️ Room %s advancing to Q%d/%d", r.Code, r.current+1, len(r.questions))

	o.publishLocked(r, EventQuestionAdvanced, "")
}
