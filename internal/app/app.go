package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bassista/trackctl/internal/api"
	"github.com/bassista/trackctl/internal/cache"
	"github.com/bassista/trackctl/internal/config"
	"github.com/bassista/trackctl/internal/logger"
	"github.com/bassista/trackctl/internal/scope"
)

// App is the application container (immutable dependencies + lifecycle
// context). Created once at startup, torn down never; tests build their own.
type App struct {
	Config   *config.Config
	Client   *api.Client
	Scope    *scope.Resolver
	Services *cache.Resource[[]api.ServiceStatus]
	System   *cache.Resource[api.SystemConfig]

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

// New wires the client, scope resolver, and shared caches from configuration.
// The resolver is not initialized yet; call InitScope before scoped API use.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)

	nav, err := scope.NewFileNav(cfg.Scope.StateFile)
	if err != nil {
		return nil, fmt.Errorf("init navigation state: %w", err)
	}
	resolver := scope.NewResolver(client, nav)
	client.SetScoper(resolver)

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:   cfg,
		Client:   client,
		Scope:    resolver,
		Services: cache.NewServices(client, cfg.Cache.ServiceTTL),
		System:   cache.NewSystemConfig(client, cfg.Cache.SystemTTL),
		BaseCtx:  ctx,
		Cancel:   cancel,
	}, nil
}

// InitScope resolves the multi-tenant scope against the backend.
func (a *App) InitScope(ctx context.Context) (scope.Scope, error) {
	return a.Scope.Initialize(ctx)
}

// StartWatchers starts the config hot-reload watcher. Only hot-applicable
// settings (log level) are taken from a reloaded config.
func (a *App) StartWatchers(confPath string) {
	err := config.StartWatcher(a.BaseCtx, confPath, func(cfg *config.Config) {
		logger.SetLevel(cfg.Misc.LogLevel)
	})
	if err != nil {
		logger.WithComponent("app").Warnf("config watcher not started: %v", err)
	}
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}
