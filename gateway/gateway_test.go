package gateway

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hangingStorage struct{}

func (hangingStorage) Upload(ctx context.Context, path string, src io.Reader) error {
	time.Sleep(time.Second)
	return nil
}
func (hangingStorage) Delete(ctx context.Context, path string) error { return nil }
func (hangingStorage) PublicURL(path string) string               { return "/uploads/" + path }

type stubStore struct {
	ApplicationStore
	updateErr error
}

func (s stubStore) UpdateReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*models.Application, error) {
	return nil, s.updateErr
}

func (s stubStore) Insert(ctx context.Context, app *models.Application) (*models.Application, error) {
	return nil, errors.New("duplicate key value violates unique constraint")
}

func TestUploadTimesOutAsUploadFailure(t *testing.T) {
	g := &Gateway{Storage: hangingStorage{}, Timeout: 20 * time.Millisecond}

	start := time.Now()
	_, err := g.Upload(context.Background(), "a/b.pdf", nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUploadFailure))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestUpdateReviewMapsNotFound(t *testing.T) {
	g := &Gateway{Applications: stubStore{updateErr: ErrNotFound}}

	_, err := g.UpdateReview(context.Background(), uuid.New(), ReviewUpdate{})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	g.Applications = stubStore{updateErr: errors.New("connection refused")}
	_, err = g.UpdateReview(context.Background(), uuid.New(), ReviewUpdate{})
	assert.True(t, apperrors.Is(err, apperrors.KindPersistenceFailure))
}

func TestInsertFailureCarriesStoreMessage(t *testing.T) {
	g := &Gateway{Applications: stubStore{}}

	_, err := g.InsertApplication(context.Background(), &models.Application{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindPersistenceFailure, appErr.Kind)
	assert.Contains(t, appErr.Detail, "duplicate key")
}
