package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationRepository is the GORM-backed application store.
type ApplicationRepository interface {
	gateway.ApplicationStore
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
}

type applicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{DB: db}
}

// Insert creates the application and returns it with the generated id and
// timestamps filled in.
func (r *applicationRepository) Insert(ctx context.Context, app *models.Application) (*models.Application, error) {
	if err := r.DB.WithContext(ctx).Create(app).Error; err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

// ListByOwner returns every application of ownerID, newest first.
func (r *applicationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list applications for owner: %w", err)
	}
	return apps, nil
}

// List returns applications matching filters, newest first. School name
// matching is a case-insensitive substring match.
func (r *applicationRepository) List(ctx context.Context, filters gateway.ApplicationFilters) ([]models.Application, error) {
	query := r.DB.WithContext(ctx).Model(&models.Application{})

	if filters.ApplicationType != "" {
		query = query.Where("application_type = ?", filters.ApplicationType)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if school := strings.TrimSpace(filters.SchoolName); school != "" {
		query = query.Where("LOWER(school_name) LIKE ?", "%"+strings.ToLower(school)+"%")
	}
	if filters.IDs != nil {
		if len(filters.IDs) == 0 {
			return []models.Application{}, nil
		}
		query = query.Where("id IN ?", filters.IDs)
	}

	var apps []models.Application
	if err := query.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// UpdateReview writes the review fields in a single update. No other column
// besides updated_at is touched.
func (r *applicationRepository) UpdateReview(ctx context.Context, id uuid.UUID, update gateway.ReviewUpdate) (*models.Application, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         update.Status,
			"admin_comments": update.Comment,
			"reviewed_by":    update.ReviewedBy,
			"reviewed_at":    update.ReviewedAt,
			"updated_at":     update.ReviewedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update application review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gateway.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
