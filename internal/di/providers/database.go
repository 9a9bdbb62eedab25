package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/seriesd/internal/config"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/store"
	"github.com/listenupapp/seriesd/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverBadger:
		st, err = store.OpenBadger(cfg.Store.Path, log.Logger)
	default:
		st, err = sqlite.Open(cfg.Store.Path, log.Logger)
	}
	if err != nil {
		return nil, err
	}

	log.WithField("driver", cfg.Store.Driver).Info("Database initialized", "path", cfg.Store.Path)

	return &StoreHandle{Store: st}, nil
}
