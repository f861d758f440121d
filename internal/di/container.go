// Package di provides dependency injection configuration for the KeyDash
// sync backend.
package di

import (
	"github.com/samber/do/v2"

	"github.com/keydashapp/keydash-sync/internal/config"
	"github.com/keydashapp/keydash-sync/internal/di/providers"
	"github.com/keydashapp/keydash-sync/internal/logger"
	"github.com/keydashapp/keydash-sync/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideProgressService)

	// HTTP layer
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly initializes every provided service so configuration or
// storage failures surface at startup, not on the first request.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.ProgressService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}
