package repositories

import (
	"context"
	"fmt"

	"bursary-portal-backend/db/models"

	"gorm.io/gorm"
)

type ContactRepository interface {
	InsertContact(ctx context.Context, contact *models.ContactSubmission) (*models.ContactSubmission, error)
}

type contactRepository struct {
	DB *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{DB: db}
}

func (r *contactRepository) InsertContact(ctx context.Context, contact *models.ContactSubmission) (*models.ContactSubmission, error) {
	if err := r.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, fmt.Errorf("insert contact submission: %w", err)
	}
	return contact, nil
}
