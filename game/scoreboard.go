// game/scoreboard.go - Final ranking and result record
package game

import (
	"encoding/json"
	"log"
	"sort"

	"quizrush/models"
)

// finalizeLocked closes the room and produces its immutable GameResult. It
// is idempotent: once a result exists it is returned untouched, never
// recomputed. Must be called with the room mutex held.
//
// Ranking order: players who left forfeit and rank last regardless of
// score; otherwise highest score, then most correct answers, then lowest
// cumulative answer time across correct answers, then player ID for a
// stable, reproducible order.
func (o *Orchestrator) finalizeLocked(r *Room) {
	if r.result != nil {
		return
	}
	r.stopWindowTimerLocked()

	now := o.now()
	ranked := make([]*models.RoomPlayer, 0, len(r.players))
	for _, id := range r.joinOrder {
		ranked = append(ranked, r.players[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aLeft := a.Status == models.PlayerLeft
		bLeft := b.Status == models.PlayerLeft
		if aLeft != bLeft {
			return !aLeft
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CorrectAnswers != b.CorrectAnswers {
			return a.CorrectAnswers > b.CorrectAnswers
		}
		if a.AnswerTimeMs != b.AnswerTimeMs {
			return a.AnswerTimeMs < b.AnswerTimeMs
		}
		return a.PlayerID < b.PlayerID
	})

	finalScores := make(map[string]int, len(ranked))
	winnerID := ""
	for i, p := range ranked {
		rank := i + 1
		p.Rank = &rank
		if p.Status != models.PlayerLeft {
			p.Status = models.PlayerFinished
			if p.FinishedAt == nil {
				p.FinishedAt = &now
			}
		}
		finalScores[p.PlayerID] = p.Score
		if i == 0 {
			winnerID = p.PlayerID
		}
	}

	scoresJSON, _ := json.Marshal(finalScores)
	duration := 0
	if r.StartedAt != nil {
		duration = int(now.Sub(*r.StartedAt).Seconds())
	}
	r.result = &models.GameResult{
		RoomID:          r.ID,
		WinnerID:        winnerID,
		FinalScores:     string(scoresJSON),
		TotalQuestions:  len(r.questions),
		DurationSeconds: duration,
		CreatedAt:       now,
	}

	r.Status = models.RoomCompleted
	r.EndedAt = &now

	if err := o.store.SaveResult(r.result, r.playerList(), now); err != nil {
		log.Printf("⚠️ Failed to persist result for room %s: %v", r.Code, err)
	}
	log.Printf("🏁 Game complete in room %s - winner: %s, duration: %ds", r.Code, winnerID, duration)

	o.publishLocked(r, EventGameCompleted, "")
	o.dropFromIndex(r)
}
