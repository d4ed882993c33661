// handlers/ws.go - Realtime WebSocket transport for game rooms
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"quizrush/game"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval

	// Send channel buffer size
	sendBufferSize = 256
)

// Message is the ws wire envelope in both directions.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Conn is one connected client. A connection belongs to at most one room at
// a time; joining subscribes it to that room's event stream.
type Conn struct {
	PlayerID    string
	DisplayName string

	ws   *websocket.Conn
	send chan Message

	roomID string
	sub    *game.Subscription

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// WSServer owns the websocket endpoint and dispatches client messages to
// the orchestrator.
type WSServer struct {
	orch *game.Orchestrator
}

func NewWSServer(orch *game.Orchestrator) *WSServer {
	return &WSServer{orch: orch}
}

// HandleWS upgrades the connection, authenticates the player and runs the
// read/write pumps until disconnect.
func (s *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID, displayName := identityFromRequest(r)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // TODO: restrict origins once the frontend host is fixed
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &Conn{
		PlayerID:    playerID,
		DisplayName: displayName,
		ws:          ws,
		send:        make(chan Message, sendBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	log.Printf("🎮 Player connected: %s (ID: %s)", displayName, playerID)

	c.queue("connected", map[string]interface{}{
		"player_id":    playerID,
		"display_name": displayName,
	})

	go c.writePump()
	s.readPump(c)

	// Cleanup on disconnect: drop the subscription but keep room membership
	// intact, so the player can reconnect and resume.
	c.detach()
	log.Printf("🔌 Player disconnected: %s (ID: %s)", displayName, playerID)
}

// identityFromRequest extracts the player identity from a JWT (header or
// query parameter) and falls back to a fresh guest identity, matching the
// guest-friendly auth of the HTTP API.
func identityFromRequest(r *http.Request) (playerID, displayName string) {
	var tokenString string
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}

	if tokenString != "" {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("invalid signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if id, ok := claims["player_id"].(string); ok {
					playerID = id
				}
				if name, ok := claims["display_name"].(string); ok {
					displayName = name
				}
			}
		}
	}

	if playerID == "" {
		playerID = uuid.NewString()
	}
	if displayName == "" {
		displayName = "Guest" + playerID[:6]
	}
	return playerID, displayName
}

func (s *WSServer) readPump(c *Conn) {
	defer func() {
		c.cancel()
		c.ws.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var msg Message
		err := wsjson.Read(c.ctx, c.ws, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway {
				log.Printf("WebSocket read error for player %s: %v", c.PlayerID, err)
			}
			return
		}
		s.handleMessage(c, msg)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := wsjson.Write(writeCtx, c.ws, msg)
			cancel()
			if err != nil {
				log.Printf("❌ Error writing to WebSocket: %v", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.ws.Ping(pingCtx)
			cancel()
			if err != nil {
				log.Printf("❌ Ping failed for player %s: %v", c.PlayerID, err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// queue enqueues an outbound message without blocking; a full buffer drops
// the message (the next full snapshot restores consumer state).
func (c *Conn) queue(msgType string, payload interface{}) {
	select {
	case c.send <- Message{Type: msgType, Payload: payload}:
	default:
		log.Printf("⚠️ Send buffer full for player %s, dropping message type: %s", c.PlayerID, msgType)
	}
}

// attach subscribes the connection to a room's event stream, replacing any
// previous subscription.
func (c *Conn) attach(hub *game.Hub, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	c.roomID = roomID
	sub := hub.Subscribe(roomID)
	c.sub = sub

	go func() {
		for evt := range sub.C {
			c.queue(evt.Type, evt.Snapshot)
		}
	}()
}

func (c *Conn) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	c.roomID = ""
}

func (c *Conn) currentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (s *WSServer) handleMessage(c *Conn, msg Message) {
	switch msg.Type {
	case "create_room":
		s.handleCreateRoom(c, msg.Payload)
	case "join_room":
		s.handleJoinRoom(c, msg.Payload)
	case "set_ready":
		s.handleSetReady(c, msg.Payload)
	case "start_game":
		s.handleStartGame(c)
	case "submit_answer":
		s.handleSubmitAnswer(c, msg.Payload)
	case "leave_room":
		s.handleLeaveRoom(c)
	case "end_game":
		s.handleEndGame(c)
	case "reconnect":
		s.handleReconnect(c, msg.Payload)
	case "ping":
		c.queue("pong", map[string]interface{}{})
	}
}

func (s *WSServer) handleCreateRoom(c *Conn, payload interface{}) {
	data := parsePayload(payload)
	settings := game.Settings{
		TotalQuestions:   getInt(data, "total_questions", 10),
		TimePerQuestion:  getInt(data, "time_per_question", 30),
		ShuffleQuestions: getBool(data, "shuffle_questions", true),
		ShowLeaderboard:  getBool(data, "show_leaderboard", true),
	}

	snap, err := s.orch.CreateRoom(
		c.PlayerID,
		c.DisplayName,
		getString(data, "game_type", ""),
		getString(data, "grade_level", ""),
		getString(data, "difficulty", ""),
		getInt(data, "max_players", 10),
		settings,
	)
	if err != nil {
		s.sendError(c, err)
		return
	}

	c.attach(s.orch.Hub(), snap.RoomID)
	c.queue("room_created", snap)
}

func (s *WSServer) handleJoinRoom(c *Conn, payload interface{}) {
	data := parsePayload(payload)

	var snap *game.Snapshot
	var err error
	if code := getString(data, "room_code", ""); code != "" {
		snap, err = s.orch.JoinByCode(code, c.PlayerID, c.DisplayName)
	} else {
		snap, err = s.orch.JoinRoom(getString(data, "room_id", ""), c.PlayerID, c.DisplayName)
	}
	if err != nil {
		s.sendError(c, err)
		return
	}

	c.attach(s.orch.Hub(), snap.RoomID)
	c.queue("room_joined", snap)
}

// handleReconnect re-attaches a connection to a room the player already
// belongs to and replays the current snapshot so the client can sync the
// live question and deadline.
func (s *WSServer) handleReconnect(c *Conn, payload interface{}) {
	data := parsePayload(payload)
	code := getString(data, "room_code", "")

	snap, err := s.orch.JoinByCode(code, c.PlayerID, c.DisplayName)
	if err != nil {
		s.sendError(c, err)
		return
	}

	c.attach(s.orch.Hub(), snap.RoomID)
	log.Printf("✅ Player %s reconnected to room %s", c.PlayerID, snap.RoomCode)
	c.queue("reconnected", snap)
}

func (s *WSServer) handleSetReady(c *Conn, payload interface{}) {
	roomID := c.currentRoom()
	if roomID == "" {
		s.sendError(c, game.ErrNotAMember)
		return
	}

	data := parsePayload(payload)
	if err := s.orch.SetReady(roomID, c.PlayerID, getBool(data, "ready", true)); err != nil {
		s.sendError(c, err)
	}
}

func (s *WSServer) handleStartGame(c *Conn) {
	roomID := c.currentRoom()
	if roomID == "" {
		s.sendError(c, game.ErrNotAMember)
		return
	}

	if _, err := s.orch.StartGame(roomID, c.PlayerID); err != nil {
		s.sendError(c, err)
	}
}

func (s *WSServer) handleSubmitAnswer(c *Conn, payload interface{}) {
	roomID := c.currentRoom()
	if roomID == "" {
		s.sendError(c, game.ErrNotAMember)
		return
	}

	data := parsePayload(payload)
	answer, err := s.orch.SubmitAnswer(
		roomID,
		c.PlayerID,
		uint(getInt(data, "question_id", 0)),
		getString(data, "answer_text", ""),
		int64(getInt(data, "time_taken_ms", 0)),
	)
	if err != nil {
		s.sendError(c, err)
		return
	}

	// Private receipt; room-wide progress arrives via the snapshot stream.
	c.queue("answer_result", map[string]interface{}{
		"question_id":   answer.QuestionID,
		"is_correct":    answer.IsCorrect,
		"points_earned": answer.PointsEarned,
		"time_taken_ms": answer.TimeTakenMs,
	})
}

func (s *WSServer) handleLeaveRoom(c *Conn) {
	roomID := c.currentRoom()
	if roomID == "" {
		return
	}

	if err := s.orch.LeaveGame(roomID, c.PlayerID); err != nil && !errors.Is(err, game.ErrNotAMember) {
		s.sendError(c, err)
	}
	c.detach()
}

func (s *WSServer) handleEndGame(c *Conn) {
	roomID := c.currentRoom()
	if roomID == "" {
		s.sendError(c, game.ErrNotAMember)
		return
	}

	if _, err := s.orch.EndGame(roomID, c.PlayerID); err != nil {
		s.sendError(c, err)
	}
}

// sendError reports a rejected operation to this player only, with the
// current authoritative snapshot when one exists so the client can
// reconcile without a reload. Guard losses are benign no-ops and are not
// surfaced.
func (s *WSServer) sendError(c *Conn, err error) {
	if errors.Is(err, game.ErrConcurrentTransitionLost) {
		return
	}
	payload := map[string]interface{}{
		"error": err.Error(),
		"code":  errorCode(err),
	}
	if roomID := c.currentRoom(); roomID != "" {
		if snap, snapErr := s.orch.Snapshot(roomID); snapErr == nil {
			payload["room"] = snap
			payload["version"] = snap.Version
		}
	}
	c.queue("error", payload)
}

// errorCode maps the game error taxonomy to stable wire codes clients can
// switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, game.ErrRoomFull):
		return "room_full"
	case errors.Is(err, game.ErrInsufficientContent):
		return "insufficient_content"
	case errors.Is(err, game.ErrStaleQuestion):
		return "stale_question"
	case errors.Is(err, game.ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, game.ErrDeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, game.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, game.ErrInvalidStateTransition):
		return "invalid_state"
	}
	return "internal"
}

func parsePayload(payload interface{}) map[string]interface{} {
	if payload == nil {
		return make(map[string]interface{})
	}
	if data, ok := payload.(map[string]interface{}); ok {
		return data
	}
	if str, ok := payload.(string); ok {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(str), &data); err == nil {
			return data
		}
	}
	return make(map[string]interface{})
}

func getString(data map[string]interface{}, key string, defaultVal string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultVal
}

func getInt(data map[string]interface{}, key string, defaultVal int) int {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return defaultVal
}

func getBool(data map[string]interface{}, key string, defaultVal bool) bool {
	if val, ok := data[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultVal
}
