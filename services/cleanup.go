package services

import (
	"log"
	"time"

	"quizrush/game"
)

const (
	cleanupInterval = 5 * time.Minute

	// Waiting rooms that never start expire after this long.
	idleRoomTTL = 30 * time.Minute

	// Finished rooms stay readable in memory for this long before the
	// store becomes the only source.
	finishedRoomRetention = time.Hour
)

// CleanupService periodically expires abandoned rooms and evicts finished
// ones from memory.
type CleanupService struct {
	orch *game.Orchestrator
	stop chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(orch *game.Orchestrator) {
	cleanupService = &CleanupService{orch: orch, stop: make(chan struct{})}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start runs the sweep loop until Stop is called.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
	log.Printf("🧹 Room cleanup service started (every %s)", cleanupInterval)
}

// Stop halts the sweep loop.
func (s *CleanupService) Stop() {
	close(s.stop)
}

func (s *CleanupService) sweep() {
	s.orch.ExpireIdleRooms(idleRoomTTL)
	s.orch.EvictFinishedRooms(finishedRoomRetention)
}
