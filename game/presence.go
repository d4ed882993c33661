// game/presence.go - Room membership and readiness
package game

import (
	"fmt"
	"log"

	"quizrush/models"
)

// JoinByCode adds a player to a waiting room. Re-joining a room the player
// already belongs to is idempotent and returns current state, so a
// reconnecting player resumes the live question and keeps earned score.
func (o *Orchestrator) JoinByCode(code, playerID, displayName string) (*Snapshot, error) {
	r, err := o.activeRoomByCode(code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return o.joinLocked(r, playerID, displayName)
}

// JoinRoom is JoinByCode addressed by room ID, for clients that hold the ID
// from an earlier snapshot instead of the shareable code.
func (o *Orchestrator) JoinRoom(roomID, playerID, displayName string) (*Snapshot, error) {
	r, err := o.room(roomID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return o.joinLocked(r, playerID, displayName)
}

// joinLocked applies the join/reconnect transition. Must be called with the
// room mutex held.
func (o *Orchestrator) joinLocked(r *Room, playerID, displayName string) (*Snapshot, error) {
	if r.Status == models.RoomCompleted || r.Status == models.RoomCancelled {
		return nil, ErrRoomNotFound
	}

	// Reconnect path: existing members get the current snapshot back in any
	// active room state.
	if p := r.member(playerID); p != nil {
		return o.snapshotLocked(r), nil
	}

	if r.Status != models.RoomWaiting {
		// Late join: the code still resolves for reads, but the room is not
		// joinable once the game has started.
		return nil, ErrRoomNotFound
	}
	if r.activeCount() >= r.MaxPlayers {
		return nil, ErrRoomFull
	}

	now := o.now()
	player := &models.RoomPlayer{
		RoomID:      r.ID,
		PlayerID:    playerID,
		DisplayName: displayName,
		Status:      models.PlayerJoined,
		JoinedAt:    now,
	}
	if _, rejoined := r.players[playerID]; !rejoined {
		r.joinOrder = append(r.joinOrder, playerID)
	}
	r.players[playerID] = player

	if err := o.store.AddPlayer(player); err != nil {
		log.Printf("⚠️ Failed to persist player %s in room %s: %v", playerID, r.Code, err)
	}
	log.Printf("🎮 Player %s (%s) joined room %s (%d/%d)", displayName, playerID, r.Code, r.activeCount(), r.MaxPlayers)

	o.publishLocked(r, EventPlayerJoined, playerID)
	return o.snapshotLocked(r), nil
}

// SetReady toggles a member's readiness while the room is still waiting.
func (o *Orchestrator) SetReady(roomID, playerID string, ready bool) error {
	r, err := o.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != models.RoomWaiting {
		return fmt.Errorf("ready toggle after start: %w", ErrInvalidStateTransition)
	}
	p := r.member(playerID)
	if p == nil {
		return ErrNotAMember
	}

	status := models.PlayerJoined
	if ready {
		status = models.PlayerReady
	}
	if p.Status == status {
		return nil
	}
	p.Status = status

	if err := o.store.UpdatePlayerStatus(r.ID, playerID, status, o.now()); err != nil {
		log.Printf("⚠️ Failed to persist ready status for %s in room %s: %v", playerID, r.Code, err)
	}

	o.publishLocked(r, EventPlayerReady, playerID)
	return nil
}

// AllReady reports whether the room can start: every non-left member ready
// (or already past readiness) and enough players for the game type.
func (o *Orchestrator) AllReady(roomID string) (bool, error) {
	r, err := o.room(roomID)
	if err != nil {
		return false, err
	}
	min := o.minPlayersFor(r.GameType)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allReadyLocked() && r.activeCount() >= min, nil
}

// LeaveGame marks a member as left. Valid in any non-terminal room state;
// score history is kept so the player still appears in final results. A
// creator leaving before start cancels the room, and a running room with no
// remaining players is cancelled too.
func (o *Orchestrator) LeaveGame(roomID, playerID string) error {
	r, err := o.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == models.RoomCompleted || r.Status == models.RoomCancelled {
		return fmt.Errorf("room already %s: %w", r.Status, ErrInvalidStateTransition)
	}
	p := r.member(playerID)
	if p == nil {
		return ErrNotAMember
	}

	now := o.now()
	p.Status = models.PlayerLeft
	p.LeftAt = &now
	if err := o.store.UpdatePlayerStatus(r.ID, playerID, models.PlayerLeft, now); err != nil {
		log.Printf("⚠️ Failed to persist leave for %s in room %s: %v", playerID, r.Code, err)
	}
	log.Printf("🚪 Player %s left room %s", playerID, r.Code)

	o.publishLocked(r, EventPlayerLeft, playerID)

	switch r.Status {
	case models.RoomWaiting:
		if playerID == r.CreatorID || r.activeCount() == 0 {
			o.cancelLocked(r, "creator left before start")
		}
	case models.RoomInProgress:
		if r.activeCount() == 0 {
			o.cancelLocked(r, "all players left")
			return nil
		}
		// The departing player may have been the only one still unanswered.
		if r.allAnsweredLocked() {
			o.advanceLocked(r)
		}
	}
	return nil
}

// cancelLocked moves a room to its terminal cancelled state. Must be called
// with the room mutex held.
func (o *Orchestrator) cancelLocked(r *Room, reason string) {
	r.stopWindowTimerLocked()
	now := o.now()
	r.Status = models.RoomCancelled
	r.EndedAt = &now

	if err := o.store.MarkCancelled(r.ID, now); err != nil {
		log.Printf("⚠️ Failed to persist cancellation of room %s: %v", r.Code, err)
	}
	log.Printf("🏁 Room %s cancelled: %s", r.Code, reason)

	o.publishLocked(r, EventRoomCancelled, "")
	o.dropFromIndex(r)
}
