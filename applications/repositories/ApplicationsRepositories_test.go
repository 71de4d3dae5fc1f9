package repositories

import (
	"context"
	"testing"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func sampleApplication(owner uuid.UUID, school string, appType models.ApplicationType, status models.ApplicationStatus, createdAt time.Time) *models.Application {
	income := decimal.NewFromInt(12000)
	return &models.Application{
		UserID:               owner,
		ApplicationType:      appType,
		Status:               status,
		FullName:             "Kamau Njoroge",
		DateOfBirth:          datatypes.Date(time.Date(2007, 3, 1, 0, 0, 0, 0, time.UTC)),
		Gender:               models.MaleGender,
		Phone:                "+254711000000",
		Email:                "kamau@example.com",
		County:               "Kiambu",
		SubCounty:            "Juja",
		Division:             "Juja",
		Location:             "Kalimoni",
		SubLocation:          "Gachororo",
		Village:              "Highpoint",
		SchoolName:           school,
		SchoolLevel:          "secondary",
		ClassYear:            "Form 2",
		HouseholdSize:        4,
		MonthlyIncome:        &income,
		ReasonForApplication: "Fees",
		CreatedAt:            createdAt,
	}
}

func TestInsertFillsIdentityAndTimestamps(t *testing.T) {
	repo := NewApplicationRepository(testdb.Open(t))
	app := sampleApplication(uuid.New(), "Central High", models.EducationApplication, models.PendingApplication, time.Time{})

	created, err := repo.Insert(context.Background(), app)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingApplication, fetched.Status)
	require.NotNil(t, fetched.MonthlyIncome)
	assert.True(t, fetched.MonthlyIncome.Equal(decimal.NewFromInt(12000)))
}

func TestListByOwnerNewestFirst(t *testing.T) {
	repo := NewApplicationRepository(testdb.Open(t))
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := repo.Insert(ctx, sampleApplication(owner, "A", models.EducationApplication, models.PendingApplication, base))
	require.NoError(t, err)
	newer, err := repo.Insert(ctx, sampleApplication(owner, "B", models.HealthApplication, models.PendingApplication, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, sampleApplication(other, "C", models.EducationApplication, models.PendingApplication, base.Add(2*time.Hour)))
	require.NoError(t, err)

	apps, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, newer.ID, apps[0].ID)
	assert.Equal(t, older.ID, apps[1].ID)
}

func TestListFilters(t *testing.T) {
	repo := NewApplicationRepository(testdb.Open(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a1, _ := repo.Insert(ctx, sampleApplication(uuid.New(), "Central High", models.EducationApplication, models.ApprovedApplication, base))
	a2, _ := repo.Insert(ctx, sampleApplication(uuid.New(), "St. Central Academy", models.HealthApplication, models.ApprovedApplication, base.Add(time.Hour)))
	_, _ = repo.Insert(ctx, sampleApplication(uuid.New(), "Central High", models.EducationApplication, models.PendingApplication, base.Add(2*time.Hour)))
	_, _ = repo.Insert(ctx, sampleApplication(uuid.New(), "Moi Girls", models.EducationApplication, models.ApprovedApplication, base.Add(3*time.Hour)))

	apps, err := repo.List(ctx, gateway.ApplicationFilters{Status: models.ApprovedApplication, SchoolName: "cEN"})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, a2.ID, apps[0].ID)
	assert.Equal(t, a1.ID, apps[1].ID)

	apps, err = repo.List(ctx, gateway.ApplicationFilters{ApplicationType: models.HealthApplication})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	apps, err = repo.List(ctx, gateway.ApplicationFilters{IDs: []uuid.UUID{a1.ID}})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	apps, err = repo.List(ctx, gateway.ApplicationFilters{IDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, apps)

	apps, err = repo.List(ctx, gateway.ApplicationFilters{})
	require.NoError(t, err)
	assert.Len(t, apps, 4)
}

func TestUpdateReviewTouchesOnlyReviewFields(t *testing.T) {
	repo := NewApplicationRepository(testdb.Open(t))
	ctx := context.Background()

	before, err := repo.Insert(ctx, sampleApplication(uuid.New(), "Central High", models.EducationApplication, models.RejectedApplication, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	before, err = repo.GetByID(ctx, before.ID)
	require.NoError(t, err)

	reviewer := uuid.New()
	comment := "Fees structure verified"
	reviewedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	after, err := repo.UpdateReview(ctx, before.ID, gateway.ReviewUpdate{
		Status:     models.ApprovedApplication,
		Comment:    &comment,
		ReviewedBy: reviewer,
		ReviewedAt: reviewedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApprovedApplication, after.Status)
	require.NotNil(t, after.AdminComments)
	assert.Equal(t, comment, *after.AdminComments)
	require.NotNil(t, after.ReviewedBy)
	assert.Equal(t, reviewer, *after.ReviewedBy)
	require.NotNil(t, after.ReviewedAt)
	assert.True(t, reviewedAt.Equal(*after.ReviewedAt))
	assert.True(t, reviewedAt.Equal(after.UpdatedAt))

	// everything else is untouched
	assert.Equal(t, before.UserID, after.UserID)
	assert.Equal(t, before.SchoolName, after.SchoolName)
	assert.Equal(t, before.FullName, after.FullName)
	assert.Equal(t, before.HouseholdSize, after.HouseholdSize)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestUpdateReviewUnknownID(t *testing.T) {
	repo := NewApplicationRepository(testdb.Open(t))

	_, err := repo.UpdateReview(context.Background(), uuid.New(), gateway.ReviewUpdate{Status: models.ApprovedApplication, ReviewedAt: time.Now()})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
