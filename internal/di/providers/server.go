package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/seriesd/internal/api"
	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/config"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/ratelimit"
	"github.com/listenupapp/seriesd/internal/service"
)

const (
	// shutdownTimeout bounds how long in-flight requests may drain.
	shutdownTimeout = 30 * time.Second
	// limiterIdleTTL is how long a client's limiter survives without requests.
	limiterIdleTTL = 10 * time.Minute
)

// RateLimiterHandle wraps the write limiter. Limiter is nil when rate
// limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-IP write limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.RateLimit.Enabled {
		return &RateLimiterHandle{}, nil
	}
	return &RateLimiterHandle{
		Limiter: ratelimit.New(cfg.RateLimit.WriteRPS, cfg.RateLimit.Burst, limiterIdleTTL),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	handler := api.NewServer(api.Options{
		Series:      do.MustInvoke[*service.SeriesService](i),
		Store:       storeHandle.Store,
		Tokens:      do.MustInvoke[*auth.TokenService](i),
		Metrics:     do.MustInvoke[*metrics.Metrics](i),
		Limiter:     limiter.Limiter,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
