// Package initializer builds the infrastructure the services run on: logger,
// store, event bus and the bootstrap admin account.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/finsova/fundrequest/infra"
	infra_eventbus "github.com/finsova/fundrequest/infra/eventbus"
	"github.com/finsova/fundrequest/infra/repository/memory"
	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/finsova/fundrequest/pkg/repository"
	usersvc "github.com/finsova/fundrequest/pkg/service/user"
	"github.com/redis/go-redis/v9"
)

const bootstrapTimeout = 30 * time.Second

// InitializeDependencies initializes all the application dependencies.
// The caller owns the result and releases it with Close.
func InitializeDependencies(cfg *config.App) (deps *config.Deps, err error) {
	logger := setupLogger(cfg.Log)
	deps = &config.Deps{Logger: logger, Config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	deps.Store, err = initStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.EventBus, err = initEventBus(ctx, cfg, logger)
	if err != nil {
		_ = deps.Store.Close()
		return nil, err
	}
	if err = bootstrapAdmin(ctx, deps); err != nil {
		_ = Close(deps)
		return nil, err
	}
	return deps, nil
}

// Close releases the event bus and then the store.
func Close(deps *config.Deps) error {
	var errs []error
	if c, ok := deps.EventBus.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if deps.Store != nil {
		errs = append(errs, deps.Store.Close())
	}
	return errors.Join(errs...)
}

func initStore(cfg *config.App, logger *slog.Logger) (repository.Store, error) {
	if cfg.Store.Driver != config.DriverPostgres {
		logger.Info("Using in-memory store")
		return memory.New(), nil
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	uow := infra.NewUoW(db)
	if err := infra.Migrate(db); err != nil {
		_ = uow.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Using postgres store")
	return uow, nil
}

// initEventBus falls back to the memory bus when redis cannot be reached so
// the API stays available; events are then only audited in process.
func initEventBus(ctx context.Context, cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg.EventBus.Driver != config.DriverRedis {
		return infra_eventbus.NewWithMemory(logger), nil
	}
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("EVENTBUS_DRIVER=redis requires REDIS_URL")
	}
	bus, err := infra_eventbus.NewWithRedis(
		ctx,
		cfg.Redis.URL,
		cfg.EventBus.Stream,
		cfg.EventBus.Group,
		events.EventTypes,
		logger,
		func(o *redis.Options) {
			o.PoolSize = cfg.Redis.PoolSize
			o.DialTimeout = cfg.Redis.DialTimeout
			o.ReadTimeout = cfg.Redis.ReadTimeout
			o.WriteTimeout = cfg.Redis.WriteTimeout
		},
	)
	if err != nil {
		logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
		return infra_eventbus.NewWithMemory(logger), nil
	}
	logger.Info("Using redis event bus", "stream", cfg.EventBus.Stream, "group", cfg.EventBus.Group)
	return bus, nil
}

// bootstrapAdmin registers the configured admin unless the username is taken.
func bootstrapAdmin(ctx context.Context, deps *config.Deps) error {
	admin := deps.Config.Admin
	if !admin.Enabled() {
		return nil
	}
	log := deps.Logger.With("op", "bootstrapAdmin", "username", admin.Username)
	svc := usersvc.New(deps.Store, deps.EventBus, deps.Logger)

	existing, err := svc.GetByUsername(ctx, admin.Username)
	switch {
	case err == nil:
		if existing.Role != user.RoleAdmin {
			log.Warn("Bootstrap username belongs to a non-admin account")
		}
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	_, err = svc.Register(ctx, usersvc.RegisterInput{
		FullName:      admin.FullName,
		Username:      admin.Username,
		Email:         admin.Email,
		Role:          string(user.RoleAdmin),
		Country:       admin.Country,
		ContactNumber: admin.ContactNumber,
		IsActive:      true,
		Password:      admin.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to register bootstrap admin: %w", err)
	}
	log.Info("Bootstrap admin registered")
	return nil
}
