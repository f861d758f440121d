package providers

import (
	"github.com/samber/do/v2"

	"github.com/keydashapp/keydash-sync/internal/logger"
	"github.com/keydashapp/keydash-sync/internal/service"
)

// ProvideProgressService provides the progress service.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(storeHandle.Store, log.Logger), nil
}
