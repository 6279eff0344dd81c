package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/coverscafe/covers-server/internal/catalog"
	"github.com/coverscafe/covers-server/internal/catalog/itunes"
	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/logger"
)

// ITunesClientHandle wraps the iTunes client with shutdown capability.
type ITunesClientHandle struct {
	*itunes.Client
}

// Shutdown implements do.Shutdownable.
func (h *ITunesClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideITunesClient provides the iTunes catalog client.
func ProvideITunesClient(i do.Injector) (*ITunesClientHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	client := itunes.NewClient(log.Logger)
	log.Info("iTunes client initialized")

	return &ITunesClientHandle{Client: client}, nil
}

// ProvideAggregator provides the catalog aggregator. Dimension probes share
// the client's HTTP transport.
func ProvideAggregator(i do.Injector) (*catalog.Aggregator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clientHandle := do.MustInvoke[*ITunesClientHandle](i)

	probe := func(ctx context.Context, url string) (int, int, error) {
		return itunes.ProbeDimensions(ctx, clientHandle.HTTPClient(), url)
	}

	return catalog.NewAggregator(clientHandle.Client, probe, cfg.Catalog, log.Logger), nil
}
