package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finsova/fundrequest/infra/initializer"
	"github.com/finsova/fundrequest/pkg/app"
	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/webapi"
	log "github.com/charmbracelet/log"
)

// @title Finsova Fund Request API
// @version 1.0.0
// @description Submit, review and export fund requests
// @contact.name Finsova Support
// @contact.email support@finsova.local
// @license.name MIT
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if cerr := initializer.Close(deps); cerr != nil {
			deps.Logger.Error("Failed to release resources", "error", cerr)
			err = errors.Join(err, cerr)
		}
	}()
	logger := deps.Logger

	fiberApp := webapi.SetupApp(app.New(deps))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"env", cfg.Env,
			"address", addr,
			"scheme", cfg.Server.Scheme,
		)
		listenErr <- fiberApp.Listen(addr)
	}()

	select {
	case err = <-listenErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err = fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-listenErr
}
