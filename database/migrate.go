// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"quizrush/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.GameRoom{},
		&models.RoomPlayer{},
		&models.QuizQuestion{},
		&models.RoomQuestion{},
		&models.Answer{},
		&models.GameResult{},
		&models.RoomEvent{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes adds the indexes AutoMigrate does not express. The two
// unique indexes are the correctness backstop for room membership and
// first-submission-wins adjudication.
func createIndexes() {
	db := GetDB()

	// Codes are only unique among live rooms; terminal rooms release their
	// code for reuse, so the unique index is partial.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_game_rooms_live_code ON game_rooms(room_code) WHERE status IN ('waiting', 'in_progress')")

	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_room_players_membership ON room_players(room_id, player_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_answers_first_wins ON answers(question_id, player_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_room_questions_number ON room_questions(room_id, question_number)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_game_rooms_status ON game_rooms(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_questions_filters ON quiz_questions(game_type, grade_level, difficulty)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_room_events_sequence ON room_events(room_id, sequence_num)")
}
