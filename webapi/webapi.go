// Package webapi provides the HTTP API of the fund request service.
// It is organized into sub-packages per resource:
// - auth: login
// - user: account registration and lookup
// - transaction: fund request submission, decisions, listing and export
package webapi

import (
	"errors"
	"strings"

	_ "github.com/finsova/fundrequest/docs" // swagger spec
	"github.com/finsova/fundrequest/pkg/app"
	authweb "github.com/finsova/fundrequest/webapi/auth"
	"github.com/finsova/fundrequest/webapi/common"
	txweb "github.com/finsova/fundrequest/webapi/transaction"
	userweb "github.com/finsova/fundrequest/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config
	fiberConfig := fiber.Config{
		AppName: "Finsova Fund Requests",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := common.ErrorToStatusCode(err)
			return common.ProblemDetailsJSON(c, utils.StatusMessage(code), err, code)
		},
	}
	if cfg.Server != nil {
		fiberConfig.ReadTimeout = cfg.Server.ReadTimeout
		fiberConfig.WriteTimeout = cfg.Server.WriteTimeout
	}
	fiberApp := fiber.New(fiberConfig)

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		// Uses X-Forwarded-For header when behind a proxy
		// Falls back to X-Real-IP or direct IP if needed
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.MaxRequests,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Finsova API is running", fiber.Map{"status": "ok"})
	})

	authweb.Routes(fiberApp, a.AuthService)
	userweb.Routes(fiberApp, a.UserService, a.AuthService, cfg)
	txweb.Routes(fiberApp, a.TransactionService, a.AuthService, cfg)
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
