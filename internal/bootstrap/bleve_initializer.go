package bootstrap

import (
	"context"

	bleveRepositories "bursary-portal-backend/bleve/repositories"
	"bursary-portal-backend/config"
	"bursary-portal-backend/gateway"

	"go.uber.org/zap"
)

// IndexBleveData rebuilds the search index from the application store.
// Failures are logged; the portal still serves listings without search.
func IndexBleveData(
	ctx context.Context,
	store gateway.ApplicationStore,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) {
	if err := bleveRepo.DeleteAllIndices(ctx); err != nil {
		config.Logger.Error("Error deleting Bleve indices", zap.Error(err))
		return
	}

	apps, err := store.List(ctx, gateway.ApplicationFilters{})
	if err != nil {
		config.Logger.Error("Error fetching applications for Bleve indexing", zap.Error(err))
		return
	}
	if err := bleveRepo.IndexExistingApplications(apps); err != nil {
		config.Logger.Error("Failed to index applications into Bleve", zap.Error(err))
		return
	}
	config.Logger.Info("Rebuilt application search index", zap.Int("count", len(apps)))
}
