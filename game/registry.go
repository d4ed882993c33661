// game/registry.go - Room creation and lookup by code
package game

import (
	"log"

	"github.com/google/uuid"

	"quizrush/models"
)

const maxRoomPlayers = 10

// CreateRoom opens a new waiting room and auto-enrols the creator as its
// first member. The room code is collision-checked against active rooms and
// regenerated on collision.
func (o *Orchestrator) CreateRoom(creatorID, displayName, gameType, gradeLevel, difficulty string, maxPlayers int, settings Settings) (*Snapshot, error) {
	if maxPlayers <= 0 || maxPlayers > maxRoomPlayers {
		maxPlayers = maxRoomPlayers
	}
	settings = settings.withDefaults()
	now := o.now()

	r := &Room{
		ID:         uuid.NewString(),
		GameType:   gameType,
		Difficulty: difficulty,
		GradeLevel: gradeLevel,
		CreatorID:  creatorID,
		MaxPlayers: maxPlayers,
		Settings:   settings,
		Status:     models.RoomWaiting,
		CreatedAt:  now,
		players:    make(map[string]*models.RoomPlayer),
		current:    -1,
		answered:   make(map[string]bool),
	}

	creator := &models.RoomPlayer{
		RoomID:      r.ID,
		PlayerID:    creatorID,
		DisplayName: displayName,
		IsCreator:   true,
		Status:      models.PlayerJoined,
		JoinedAt:    now,
	}
	r.players[creatorID] = creator
	r.joinOrder = []string{creatorID}

	// The room mutex is held across indexing and the room_created publish,
	// so a racing join blocks until the creation event holds sequence 1.
	r.mu.Lock()
	defer r.mu.Unlock()

	o.mu.Lock()
	code := generateRoomCode()
	for o.roomsByCode[code] != nil {
		code = generateRoomCode()
	}
	r.Code = code
	o.roomsByID[r.ID] = r
	o.roomsByCode[code] = r
	o.mu.Unlock()

	if err := o.store.CreateRoom(&models.GameRoom{
		ID:               r.ID,
		RoomCode:         r.Code,
		GameType:         gameType,
		Difficulty:       difficulty,
		GradeLevel:       gradeLevel,
		CreatorID:        creatorID,
		MaxPlayers:       maxPlayers,
		TotalQuestions:   settings.TotalQuestions,
		TimePerQuestion:  settings.TimePerQuestion,
		ShuffleQuestions: settings.ShuffleQuestions,
		ShowLeaderboard:  settings.ShowLeaderboard,
		Status:           models.RoomWaiting,
		CurrentQuestion:  -1,
	}, creator); err != nil {
		log.Printf("⚠️ Failed to persist room %s: %v", r.Code, err)
	}

	log.Printf("🏠 Room created: code=%s, type=%s, creator=%s", r.Code, gameType, creatorID)

	o.publishLocked(r, EventRoomCreated, creatorID)
	return o.snapshotLocked(r), nil
}

// FindRoomByCode resolves a room code case-insensitively. Only rooms that
// are still waiting or in progress resolve; completed and cancelled rooms
// return ErrRoomNotFound for join purposes (results stay readable through
// Snapshot/Result by room ID).
func (o *Orchestrator) FindRoomByCode(code string) (*Snapshot, error) {
	r, err := o.activeRoomByCode(code)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return o.snapshotLocked(r), nil
}

func (o *Orchestrator) activeRoomByCode(code string) (*Room, error) {
	o.mu.RLock()
	r, ok := o.roomsByCode[normalizeCode(code)]
	o.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	active := r.Status == models.RoomWaiting || r.Status == models.RoomInProgress
	r.mu.Unlock()
	if !active {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// ActiveRooms lists snapshots of every waiting or in-progress room.
func (o *Orchestrator) ActiveRooms() []*Snapshot {
	o.mu.RLock()
	rooms := make([]*Room, 0, len(o.roomsByID))
	for _, r := range o.roomsByID {
		rooms = append(rooms, r)
	}
	o.mu.RUnlock()

	list := make([]*Snapshot, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if r.Status == models.RoomWaiting || r.Status == models.RoomInProgress {
			list = append(list, o.snapshotLocked(r))
		}
		r.mu.Unlock()
	}
	return list
}

// dropFromIndex removes a terminal room from the live code index so the
// code becomes reusable. The room itself stays reachable by ID for result
// reads.
func (o *Orchestrator) dropFromIndex(r *Room) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.roomsByCode[r.Code] == r {
		delete(o.roomsByCode, r.Code)
	}
}
