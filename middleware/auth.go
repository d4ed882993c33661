// middleware/auth.go
package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "quizrush-secret-change-in-production"
	}
	return []byte(secret)
}

// AuthMiddleware validates the player token and stores the identity in
// request locals. Players are guests; there is no account table to check
// against, the signed claims are the identity.
func AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization header format"})
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return c.Status(401).JSON(fiber.Map{"error": "Token expired"})
	}

	c.Locals("playerId", claims["player_id"])
	c.Locals("displayName", claims["display_name"])

	return c.Next()
}

// OptionalAuthMiddleware extracts the identity when a valid token is
// present and passes the request through either way. Read endpoints use it
// so spectators can browse rooms without a session.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	var tokenString string
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return c.Next()
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return c.Next()
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		c.Locals("playerId", claims["player_id"])
		c.Locals("displayName", claims["display_name"])
	}
	return c.Next()
}

// GetPlayerID returns the authenticated player's ID from locals.
func GetPlayerID(c *fiber.Ctx) (string, error) {
	playerID := c.Locals("playerId")
	if playerID == nil {
		return "", fiber.NewError(401, "Player not authenticated")
	}
	if id, ok := playerID.(string); ok && id != "" {
		return id, nil
	}
	return "", fiber.NewError(401, "Invalid player ID format")
}

// GetDisplayName returns the authenticated player's display name from locals.
func GetDisplayName(c *fiber.Ctx) (string, error) {
	name := c.Locals("displayName")
	if name == nil {
		return "", fiber.NewError(401, "Player not authenticated")
	}
	if str, ok := name.(string); ok {
		return str, nil
	}
	return "", fiber.NewError(401, "Invalid display name format")
}
