package middleware

import (
	"errors"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "user"

// JwtMiddleware requires a valid HS256 bearer token signed with secret. An empty secret
// disables authentication.
func JwtMiddleware(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ContextKey: userKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error: "Missing or invalid JWT token",
			})
		},
	})
}

// IssueToken signs a token for subject valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "otterwatch",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Subject returns the subject of the request's token, "anonymous" when there is none.
func Subject(c *fiber.Ctx) string {
	token, ok := c.Locals(userKey).(*jwt.Token)
	if !ok || token == nil {
		return "anonymous"
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "anonymous"
	}
	return sub
}
