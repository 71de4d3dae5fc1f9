package services

import (
	"context"
	"strings"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusService answers an applicant's questions about their own
// applications.
type StatusService struct {
	Gateway *gateway.Gateway
}

func NewStatusService(gw *gateway.Gateway) *StatusService {
	return &StatusService{Gateway: gw}
}

// ListOwn returns every application owned by principal, newest first.
func (s *StatusService) ListOwn(ctx context.Context, principal *models.Principal) ([]models.Application, error) {
	if principal == nil {
		return nil, apperrors.AuthRequired("Please sign in to view your applications")
	}

	apps, err := s.Gateway.ListOwnerApplications(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	owned := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if app.UserID != principal.ID {
			config.Logger.Warn("Dropping application owned by another user",
				zap.String("application_id", app.ID.String()),
				zap.String("user_id", principal.ID.String()))
			continue
		}
		owned = append(owned, app)
	}
	return owned, nil
}

// FindByReference picks the application with referenceID out of owned.
func FindByReference(owned []models.Application, referenceID string) (*models.Application, error) {
	ref := strings.TrimSpace(referenceID)
	if ref != "" {
		for i := range owned {
			if owned[i].ReferenceID() == ref {
				return &owned[i], nil
			}
		}
	}
	return nil, apperrors.NotFound("No application with that reference was found")
}

// Progress is the completion percentage shown for a status.
func Progress(status models.ApplicationStatus) (int, error) {
	switch status {
	case models.PendingApplication:
		return 25, nil
	case models.UnderReviewApplication:
		return 50, nil
	case models.ApprovedApplication, models.RejectedApplication:
		return 100, nil
	}
	return 0, apperrors.Validation("Unknown application status %q", status)
}

// StatusLabel renders a status for people, e.g. "Under Review".
func StatusLabel(status models.ApplicationStatus) string {
	return humanize(string(status))
}

func humanize(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

type Milestone struct {
	Status    string     `json:"status"`
	Label     string     `json:"label"`
	Date      *time.Time `json:"date"`
	Completed bool       `json:"completed"`
}

// History lists the milestones an application has passed.
func History(app *models.Application) []Milestone {
	created := app.CreatedAt
	history := []Milestone{{Status: "submitted", Label: "Submitted", Date: &created, Completed: true}}

	underReview := Milestone{
		Status:    string(models.UnderReviewApplication),
		Label:     StatusLabel(models.UnderReviewApplication),
		Completed: true,
	}

	switch app.Status {
	case models.UnderReviewApplication:
		underReview.Date = app.ReviewedAt
		history = append(history, underReview)
	case models.ApprovedApplication, models.RejectedApplication:
		history = append(history, underReview, Milestone{
			Status:    string(app.Status),
			Label:     StatusLabel(app.Status),
			Date:      app.ReviewedAt,
			Completed: true,
		})
	}
	return history
}

// TrackedApplication is an application with its derived progress.
type TrackedApplication struct {
	Application *models.Application `json:"application"`
	ReferenceID string              `json:"reference_id"`
	StatusLabel string              `json:"status_label"`
	Progress    int                 `json:"progress"`
	History     []Milestone         `json:"history"`
}

func Describe(app *models.Application) (*TrackedApplication, error) {
	progress, err := Progress(app.Status)
	if err != nil {
		return nil, err
	}
	return &TrackedApplication{
		Application: app,
		ReferenceID: app.ReferenceID(),
		StatusLabel: StatusLabel(app.Status),
		Progress:    progress,
		History:     History(app),
	}, nil
}

// Track finds one of principal's applications by reference.
func (s *StatusService) Track(ctx context.Context, principal *models.Principal, referenceID string) (*TrackedApplication, error) {
	owned, err := s.ListOwn(ctx, principal)
	if err != nil {
		return nil, err
	}
	app, err := FindByReference(owned, referenceID)
	if err != nil {
		return nil, err
	}
	return Describe(app)
}
