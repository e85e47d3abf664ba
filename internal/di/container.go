// Package di provides dependency injection configuration for the station daemon.
package di

import (
	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/config"
	"github.com/yuzhenbei/booktravel/internal/di/providers"
	"github.com/yuzhenbei/booktravel/internal/identity"
	"github.com/yuzhenbei/booktravel/internal/logger"
	"github.com/yuzhenbei/booktravel/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Change stream
	do.Provide(injector, providers.ProvideEventsManager)

	// Remote side
	do.Provide(injector, providers.ProvideIdentity)
	do.Provide(injector, providers.ProvideGateway)

	// Local persistence
	do.Provide(injector, providers.ProvideCache)

	// Stores
	do.Provide(injector, providers.ProvideToastCenter)
	do.Provide(injector, providers.ProvideFeedStore)
	do.Provide(injector, providers.ProvideThreadStore)
	do.Provide(injector, providers.ProvideNotificationCenter)
	do.Provide(injector, providers.ProvideStationStore)
	do.Provide(injector, providers.ProvideBootstrap)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and kicks off the initial gateway load.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.EventsManagerHandle](injector)
	_ = do.MustInvoke[*identity.Client](injector)
	_ = do.MustInvoke[*providers.GatewayHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.ToastCenterHandle](injector)
	_ = do.MustInvoke[*store.FeedStore](injector)
	_ = do.MustInvoke[*store.ThreadStore](injector)
	_ = do.MustInvoke[*store.NotificationCenter](injector)
	_ = do.MustInvoke[*store.StationStore](injector)
	_ = do.MustInvoke[*providers.Bootstrap](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Fetch fresh data without blocking startup; the warm start (if any)
	// keeps the view usable meanwhile.
	go providers.RunInitialLoad(injector)

	return nil
}
