// handlers/rooms.go - Read API for rooms, results and history
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"quizrush/game"
	"quizrush/middleware"
	"quizrush/services"
)

// RoomHandlers serves the HTTP read side. All writes go through the
// WebSocket transport; these endpoints only observe.
type RoomHandlers struct {
	orch  *game.Orchestrator
	store *services.RoomStore
}

func NewRoomHandlers(orch *game.Orchestrator, store *services.RoomStore) *RoomHandlers {
	return &RoomHandlers{orch: orch, store: store}
}

// ListActiveRooms returns every joinable or running room.
func (h *RoomHandlers) ListActiveRooms(c *fiber.Ctx) error {
	rooms := h.orch.ActiveRooms()
	return c.JSON(fiber.Map{
		"success": true,
		"rooms":   rooms,
		"count":   len(rooms),
	})
}

// GetRoomByCode returns the live snapshot for an active room, or the
// persisted record for a room that has already finished.
func (h *RoomHandlers) GetRoomByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	snap, err := h.orch.FindRoomByCode(code)
	if err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"room":    snap,
		})
	}
	if !errors.Is(err, game.ErrRoomNotFound) {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to look up room",
		})
	}

	room, err := h.store.GetRoomByCode(code)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Room not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"room":    room,
	})
}

// GetResult returns the final result for a completed room.
func (h *RoomHandlers) GetResult(c *fiber.Ctx) error {
	code := c.Params("code")

	room, err := h.store.GetRoomByCode(code)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Room not found",
		})
	}

	// Prefer the in-memory result while the room is still resident
	if result, err := h.orch.Result(room.ID); err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"result":  result,
		})
	}

	result, err := h.store.GetResult(room.ID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "No result for this room yet",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}

// GetRoomEvents returns the persisted event log for a room, ordered by
// sequence number.
func (h *RoomHandlers) GetRoomEvents(c *fiber.Ctx) error {
	code := c.Params("code")

	room, err := h.store.GetRoomByCode(code)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Room not found",
		})
	}

	events, err := h.store.GetRoomEvents(room.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load events",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

// GetRecentRooms returns recently finished rooms, newest first.
func (h *RoomHandlers) GetRecentRooms(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	rooms, err := h.store.GetRecentRooms(limit, offset)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load rooms",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"rooms":   rooms,
		"count":   len(rooms),
	})
}

// GetMyHistory returns the authenticated player's past games.
func (h *RoomHandlers) GetMyHistory(c *fiber.Ctx) error {
	playerID, err := middleware.GetPlayerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"error":   "Player not authenticated",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.store.GetPlayerHistory(playerID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load history",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"games":   history,
		"count":   len(history),
	})
}
