package providers

import (
	"github.com/samber/do/v2"

	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/logger"
	"github.com/coverscafe/covers-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Store.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Store.DatabasePath)

	return &StoreHandle{Store: db}, nil
}
