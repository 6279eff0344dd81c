// Package di provides dependency injection configuration for the covers server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/di/providers"
	"github.com/coverscafe/covers-server/internal/logger"
	"github.com/coverscafe/covers-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideITunesClient)
	do.Provide(injector, providers.ProvideAggregator)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideIdentityService)
	do.Provide(injector, providers.ProvideUploadService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns after every provider has
// been invoked once, so failures surface at startup rather than mid-request.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ITunesClientHandle](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.IdentityService](injector)
	_ = do.MustInvoke[*service.UploadService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
