// Package di wires the seriesd components together with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/config"
	"github.com/listenupapp/seriesd/internal/di/providers"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/service"
)

// NewContainer creates the DI container for cfg. Nothing is built until it
// is invoked.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideBylineParser)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSeriesService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap builds every service and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*metrics.Metrics](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SeriesService](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
