package providers

import (
	"github.com/samber/do/v2"

	"github.com/keydashapp/keydash-sync/internal/config"
	"github.com/keydashapp/keydash-sync/internal/logger"
	"github.com/keydashapp/keydash-sync/internal/store/sqlite"
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

	db, err := sqlite.Open(cfg.Server.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Server.DatabasePath)

	return &StoreHandle{Store: db}, nil
}
