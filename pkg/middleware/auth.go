// Package middleware holds fiber middleware shared by the HTTP routes.
package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenContextKey is where the verified *jwt.Token is stored in fiber locals.
const TokenContextKey = "user"

const malformedJWT = "missing or malformed JWT"

// JwtProtected verifies the bearer token with the HS256 secret.
func JwtProtected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: []byte(secret)},
		ContextKey:   TokenContextKey,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status, title := fiber.StatusUnauthorized, "Invalid or expired JWT"
	if strings.EqualFold(err.Error(), malformedJWT) {
		status, title = fiber.StatusBadRequest, "Missing or malformed JWT"
	}
	return c.Status(status).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  title,
		"status": status,
		"detail": err.Error(),
	}, "application/problem+json")
}
