package repositories

import (
	"context"

	bleveindex "bursary-portal-backend/bleve/services"
	"bursary-portal-backend/db/models"

	"github.com/google/uuid"
)

type BleveRepository struct {
	indexer bleveindex.IndexingServiceInterface
}

type BleveRepositoryInterface interface {
	DeleteAllIndices(ctx context.Context) error

	// ==== Application Indexing ====
	IndexApplication(app models.Application) error
	IndexExistingApplications(apps []models.Application) error
	DeleteApplication(applicationID string) error
	SearchApplicationIDs(query string, limit int) ([]uuid.UUID, error)
}

func NewBleveRepository(indexer bleveindex.IndexingServiceInterface) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}

func (r *BleveRepository) DeleteAllIndices(ctx context.Context) error {
	return r.indexer.DeleteAllIndices()
}
