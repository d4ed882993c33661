// handlers/auth.go - Guest identity for the quiz API
package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type GuestLoginRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

type AuthResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token,omitempty"`
	Player  PlayerInfo `json:"player,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type PlayerInfo struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// GuestLogin mints a new player identity. There is no account table; the
// signed token IS the identity, and the same token works for HTTP and
// WebSocket sessions.
func GuestLogin(c *fiber.Ctx) error {
	var req GuestLoginRequest

	// Empty body is fine, the display name is optional
	_ = c.BodyParser(&req)

	playerID := uuid.NewString()

	displayName := req.DisplayName
	if displayName == "" {
		displayName = fmt.Sprintf("Guest_%s", playerID[:8])
	}
	if len(displayName) > 32 {
		displayName = displayName[:32]
	}

	token, err := generateToken(playerID, displayName)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		Player: PlayerInfo{
			PlayerID:    playerID,
			DisplayName: displayName,
			CreatedAt:   time.Now(),
		},
	})
}

// RefreshToken reissues a token for the authenticated player, optionally
// with a new display name.
func RefreshToken(c *fiber.Ctx) error {
	playerID, _ := c.Locals("playerId").(string)
	displayName, _ := c.Locals("displayName").(string)
	if playerID == "" {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Error:   "Player not authenticated",
		})
	}

	var req GuestLoginRequest
	_ = c.BodyParser(&req)
	if req.DisplayName != "" {
		displayName = req.DisplayName
		if len(displayName) > 32 {
			displayName = displayName[:32]
		}
	}

	token, err := generateToken(playerID, displayName)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		Player: PlayerInfo{
			PlayerID:    playerID,
			DisplayName: displayName,
			CreatedAt:   time.Now(),
		},
	})
}

func generateToken(playerID, displayName string) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "quizrush-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"player_id":    playerID,
		"display_name": displayName,
		"exp":          time.Now().Add(time.Hour * 720).Unix(), // 30 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
