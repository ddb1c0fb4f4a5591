package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by the middleware.
const (
	LocalOwnerID    = "userId"
	LocalOwnerEmail = "ownerEmail"
)

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success sets the owner id (subject) and email into c.Locals.
func NewAuthMiddleware(secret, expectedIssuer string) fiber.Handler {
	secretBytes := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	keyFunc := func(*jwt.Token) (any, error) { return secretBytes, nil }

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}
		tokenStr := bearerToken(authHeader)
		if tokenStr == "" {
			return unauthorized(c, "empty token")
		}
		var claims Claims
		token, err := parser.ParseWithClaims(tokenStr, &claims, keyFunc)
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid or expired token")
		}
		if expectedIssuer != "" && claims.Issuer != expectedIssuer {
			return unauthorized(c, "invalid token issuer")
		}
		c.Locals(LocalOwnerID, claims.Subject)
		c.Locals(LocalOwnerEmail, claims.Email)
		return c.Next()
	}
}

// bearerToken accepts both "Bearer <token>" and a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": msg})
}
