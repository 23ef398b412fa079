package config

import (
	"log/slog"

	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/finsova/fundrequest/pkg/repository"
)

// Deps holds the infrastructure the services are built from.
type Deps struct {
	Store    repository.Store
	EventBus eventbus.Bus
	Logger   *slog.Logger
	Config   *App
}
