// Package app composes the services from their infrastructure and registers
// the event handlers on the bus.
package app

import (
	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/handler/audit"
	"github.com/finsova/fundrequest/pkg/service/auth"
	"github.com/finsova/fundrequest/pkg/service/transaction"
	"github.com/finsova/fundrequest/pkg/service/user"
)

type App struct {
	Deps               *config.Deps
	Config             *config.App
	AuthService        *auth.Service
	UserService        *user.Service
	TransactionService *transaction.Service
}

func New(deps *config.Deps, opts ...transaction.Option) *App {
	app := &App{
		Deps:   deps,
		Config: deps.Config,
	}
	app.setupEventBus()

	app.AuthService = auth.New(deps.Store, deps.Config.Auth.Jwt, deps.Logger)
	app.UserService = user.New(deps.Store, deps.EventBus, deps.Logger)
	app.TransactionService = transaction.New(deps.Store, deps.EventBus, deps.Logger, opts...)
	return app
}

// setupEventBus registers the audit handler for every event type.
func (a *App) setupEventBus() {
	tracker := audit.NewTracker(audit.DefaultTrackerSize)
	handler := audit.WithIdempotency(
		audit.Handle(a.Deps.Logger),
		tracker,
		audit.Key,
		"audit",
		a.Deps.Logger,
	)
	for _, t := range []events.EventType{
		events.EventTypeTransactionSubmitted,
		events.EventTypeTransactionDecided,
		events.EventTypeUserRegistered,
	} {
		a.Deps.EventBus.Register(t, handler)
	}
}
