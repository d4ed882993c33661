// services/room_store.go - Durable room store (PostgreSQL via gorm)
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizrush/database"
	"quizrush/models"
)

// RoomStore persists room lifecycle records. It implements game.Store; the
// live state machine stays authoritative and the unique indexes created in
// migrations back the membership and first-submission-wins invariants.
type RoomStore struct{}

func NewRoomStore() *RoomStore {
	return &RoomStore{}
}

// CreateRoom writes the room record and its creator membership together.
func (s *RoomStore) CreateRoom(room *models.GameRoom, creator *models.RoomPlayer) error {
	db := database.GetDB()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		if err := tx.Create(creator).Error; err != nil {
			return fmt.Errorf("failed to enrol creator: %w", err)
		}
		return nil
	})
}

// AddPlayer upserts a membership row. Re-joins hit the (room_id, player_id)
// unique index and refresh the existing row instead of erroring.
func (s *RoomStore) AddPlayer(player *models.RoomPlayer) error {
	db := database.GetDB()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "status", "joined_at", "left_at"}),
	}).Create(player).Error
	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}
	return nil
}

// UpdatePlayerStatus records a presence transition; leaving also stamps
// left_at while keeping score history.
func (s *RoomStore) UpdatePlayerStatus(roomID, playerID, status string, at time.Time) error {
	db := database.GetDB()

	updates := map[string]interface{}{"status": status}
	if status == models.PlayerLeft {
		updates["left_at"] = at
	}
	result := db.Model(&models.RoomPlayer{}).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update player status: %w", result.Error)
	}
	return nil
}

// MarkStarted flips the room to in_progress and writes the fixed question
// set in one transaction.
func (s *RoomStore) MarkStarted(roomID string, at time.Time, questions []models.RoomQuestion) error {
	db := database.GetDB()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GameRoom{}).
			Where("id = ? AND status = ?", roomID, models.RoomWaiting).
			Updates(map[string]interface{}{
				"status":           models.RoomInProgress,
				"started_at":       at,
				"current_question": 0,
			}).Error; err != nil {
			return fmt.Errorf("failed to start room: %w", err)
		}
		if err := tx.Model(&models.RoomPlayer{}).
			Where("room_id = ? AND status <> ?", roomID, models.PlayerLeft).
			Update("status", models.PlayerPlaying).Error; err != nil {
			return fmt.Errorf("failed to mark players playing: %w", err)
		}
		for _, question := range questions {
			question.ID = 0 // let the database assign its own key
			if err := tx.Create(&question).Error; err != nil {
				return fmt.Errorf("failed to write question %d: %w", question.QuestionNumber, err)
			}
		}
		return nil
	})
}

// AdvanceQuestion bumps the room's current question index.
func (s *RoomStore) AdvanceQuestion(roomID string, questionNumber int) error {
	db := database.GetDB()

	result := db.Model(&models.GameRoom{}).
		Where("id = ?", roomID).
		Update("current_question", questionNumber)
	if result.Error != nil {
		return fmt.Errorf("failed to advance question: %w", result.Error)
	}
	return nil
}

// RecordAnswer writes the answer row and the player's updated score/stats in
// one transaction. The (question_id, player_id) unique index rejects
// duplicates even if request-level serialization were imperfect.
func (s *RoomStore) RecordAnswer(answer *models.Answer, player *models.RoomPlayer) error {
	db := database.GetDB()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		if err := tx.Model(&models.RoomPlayer{}).
			Where("room_id = ? AND player_id = ?", answer.RoomID, answer.PlayerID).
			Updates(map[string]interface{}{
				"score":           player.Score,
				"correct_answers": player.CorrectAnswers,
				"total_answers":   player.TotalAnswers,
				"answer_time_ms":  player.AnswerTimeMs,
				"status":          player.Status,
			}).Error; err != nil {
			return fmt.Errorf("failed to update player stats: %w", err)
		}
		return nil
	})
}

// SaveResult completes the room: result record, final ranks, terminal
// statuses and ended_at, all in one transaction.
func (s *RoomStore) SaveResult(result *models.GameResult, players []models.RoomPlayer, at time.Time) error {
	db := database.GetDB()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		if err := tx.Model(&models.GameRoom{}).
			Where("id = ?", result.RoomID).
			Updates(map[string]interface{}{
				"status":   models.RoomCompleted,
				"ended_at": at,
			}).Error; err != nil {
			return fmt.Errorf("failed to complete room: %w", err)
		}
		for _, p := range players {
			if err := tx.Model(&models.RoomPlayer{}).
				Where("room_id = ? AND player_id = ?", result.RoomID, p.PlayerID).
				Updates(map[string]interface{}{
					"rank":        p.Rank,
					"status":      p.Status,
					"finished_at": p.FinishedAt,
				}).Error; err != nil {
				return fmt.Errorf("failed to rank player %s: %w", p.PlayerID, err)
			}
		}
		return nil
	})
}

// MarkCancelled moves the room to its cancelled terminal state.
func (s *RoomStore) MarkCancelled(roomID string, at time.Time) error {
	db := database.GetDB()

	result := db.Model(&models.GameRoom{}).
		Where("id = ? AND status IN ?", roomID, []string{models.RoomWaiting, models.RoomInProgress}).
		Updates(map[string]interface{}{
			"status":   models.RoomCancelled,
			"ended_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel room: %w", result.Error)
	}
	return nil
}

// LogEvent appends to the room's sequence-numbered event log.
func (s *RoomStore) LogEvent(event *models.RoomEvent) error {
	db := database.GetDB()

	if err := db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}
	return nil
}

// GetRoomByCode loads a persisted room with its players, for result display
// after the live room has been retired.
func (s *RoomStore) GetRoomByCode(code string) (*models.GameRoom, error) {
	db := database.GetDB()

	var room models.GameRoom
	if err := db.Where("UPPER(room_code) = UPPER(?)", code).First(&room).Error; err != nil {
		return nil, fmt.Errorf("room not found: %w", err)
	}
	var players []models.RoomPlayer
	if err := db.Where("room_id = ?", room.ID).Order("joined_at ASC").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	room.Players = players
	return &room, nil
}

// GetResult loads the final result for a room.
func (s *RoomStore) GetResult(roomID string) (*models.GameResult, error) {
	db := database.GetDB()

	var result models.GameResult
	if err := db.Where("room_id = ?", roomID).First(&result).Error; err != nil {
		return nil, fmt.Errorf("result not found: %w", err)
	}
	return &result, nil
}

// GetPlayerHistory retrieves a player's past room memberships.
func (s *RoomStore) GetPlayerHistory(playerID string, limit int) ([]models.RoomPlayer, error) {
	db := database.GetDB()

	var players []models.RoomPlayer
	if err := db.Where("player_id = ?", playerID).Order("joined_at DESC").Limit(limit).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to get player history: %w", err)
	}
	return players, nil
}

// GetRecentRooms retrieves recently created rooms with pagination.
func (s *RoomStore) GetRecentRooms(limit, offset int) ([]models.GameRoom, error) {
	db := database.GetDB()

	var rooms []models.GameRoom
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent rooms: %w", err)
	}
	return rooms, nil
}

// GetRoomEvents retrieves a room's event log in causal order.
func (s *RoomStore) GetRoomEvents(roomID string) ([]models.RoomEvent, error) {
	db := database.GetDB()

	var events []models.RoomEvent
	if err := db.Where("room_id = ?", roomID).Order("sequence_num ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}
