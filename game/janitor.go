// game/janitor.go - Background hygiene for resident room state
package game

import (
	"log"
	"time"

	"quizrush/models"
)

// ExpireIdleRooms cancels waiting rooms that never started within maxIdle.
// Returns how many rooms were cancelled.
func (o *Orchestrator) ExpireIdleRooms(maxIdle time.Duration) int {
	now := o.now()
	expired := 0

	for _, r := range o.allRooms() {
		r.mu.Lock()
		if r.Status == models.RoomWaiting && now.Sub(r.CreatedAt) > maxIdle {
			o.cancelLocked(r, "idle room expired")
			expired++
		}
		r.mu.Unlock()
	}

	if expired > 0 {
		log.Printf("🔄 Expired %d idle rooms", expired)
	}
	return expired
}

// EvictFinishedRooms drops terminal rooms from memory once their results
// have been readable for the retention window. Results remain available
// from the store afterwards. Returns how many rooms were evicted.
func (o *Orchestrator) EvictFinishedRooms(retention time.Duration) int {
	now := o.now()
	var evict []string

	for _, r := range o.allRooms() {
		r.mu.Lock()
		terminal := r.Status == models.RoomCompleted || r.Status == models.RoomCancelled
		if terminal && r.EndedAt != nil && now.Sub(*r.EndedAt) > retention {
			evict = append(evict, r.ID)
		}
		r.mu.Unlock()
	}

	o.mu.Lock()
	for _, id := range evict {
		if r, ok := o.roomsByID[id]; ok {
			delete(o.roomsByID, id)
			if o.roomsByCode[r.Code] == r {
				delete(o.roomsByCode, r.Code)
			}
		}
	}
	o.mu.Unlock()

	if len(evict) > 0 {
		log.Printf("🔄 Evicted %d finished rooms from memory", len(evict))
	}
	return len(evict)
}

func (o *Orchestrator) allRooms() []*Room {
	o.mu.RLock()
	defer o.mu.RUnlock()
	rooms := make([]*Room, 0, len(o.roomsByID))
	for _, r := range o.roomsByID {
		rooms = append(rooms, r)
	}
	return rooms
}
