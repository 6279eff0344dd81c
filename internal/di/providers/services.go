package providers

import (
	"github.com/samber/do/v2"

	"github.com/coverscafe/covers-server/internal/catalog"
	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/logger"
	"github.com/coverscafe/covers-server/internal/service"
)

// ProvideCatalogService provides the catalog search service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	agg := do.MustInvoke[*catalog.Aggregator](i)

	return service.NewCatalogService(storeHandle.Store, agg, log.Logger), nil
}

// ProvideIdentityService provides the artist identity service.
func ProvideIdentityService(i do.Injector) (*service.IdentityService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewIdentityService(storeHandle.Store, cfg.Merge, log.Logger), nil
}

// ProvideUploadService provides the cover upload service.
func ProvideUploadService(i do.Injector) (*service.UploadService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewUploadService(storeHandle.Store, log.Logger), nil
}
