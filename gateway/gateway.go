// Package gateway is the single path from portal workflows to remote
// collaborators. Every call is bounded by a timeout and every failure comes
// back as an *apperrors.Error.
package gateway

import (
	"context"
	"errors"
	"io"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors collaborators return for conditions the workflows act on.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// ApplicationFilters narrows an admin listing. Zero values do not filter.
type ApplicationFilters struct {
	ApplicationType models.ApplicationType
	Status          models.ApplicationStatus
	SchoolName      string
	// IDs restricts the result to these rows when non-nil.
	IDs []uuid.UUID
}

type ReviewUpdate struct {
	Status     models.ApplicationStatus
	Comment    *string
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
}

type ApplicationStore interface {
	Insert(ctx context.Context, app *models.Application) (*models.Application, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Application, error)
	List(ctx context.Context, filters ApplicationFilters) ([]models.Application, error)
	UpdateReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*models.Application, error)
}

type ContactStore interface {
	InsertContact(ctx context.Context, contact *models.ContactSubmission) (*models.ContactSubmission, error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, path string, src io.Reader) error
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type SignUpRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type AuthProvider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*models.Principal, error)
	SignIn(ctx context.Context, email, password string) (*models.Principal, error)
	GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error)
}

type AdminAllowList interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Gateway struct {
	Applications ApplicationStore
	Contacts     ContactStore
	Storage      ObjectStorage
	Auth         AuthProvider
	Admins       AdminAllowList
	Timeout      time.Duration
}

const DefaultTimeout = 15 * time.Second

// call runs fn under the gateway timeout. fn keeps running in the
// background if it ignores ctx, but the caller is released on time.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func logFailure(op string, err error, fields ...zap.Field) {
	config.Logger.Error("Remote call failed", append([]zap.Field{zap.String("operation", op), zap.Error(err)}, fields...)...)
}

func (g *Gateway) InsertApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	created, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.Application, error) {
		return g.Applications.Insert(ctx, app)
	})
	if err != nil {
		logFailure("insert_application", err, zap.String("user_id", app.UserID.String()))
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to save application", err)
	}
	return created, nil
}

func (g *Gateway) ListOwnerApplications(ctx context.Context, ownerID uuid.UUID) ([]models.Application, error) {
	apps, err := call(ctx, g.Timeout, func(ctx context.Context) ([]models.Application, error) {
		return g.Applications.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		logFailure("list_owner_applications", err, zap.String("user_id", ownerID.String()))
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to load your applications", err)
	}
	return apps, nil
}

func (g *Gateway) ListApplications(ctx context.Context, filters ApplicationFilters) ([]models.Application, error) {
	apps, err := call(ctx, g.Timeout, func(ctx context.Context) ([]models.Application, error) {
		return g.Applications.List(ctx, filters)
	})
	if err != nil {
		logFailure("list_applications", err)
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to load applications", err)
	}
	return apps, nil
}

func (g *Gateway) UpdateReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*models.Application, error) {
	app, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.Application, error) {
		return g.Applications.UpdateReview(ctx, id, update)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.NotFound("Application not found")
	}
	if err != nil {
		logFailure("update_review", err, zap.String("application_id", id.String()))
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to update application status", err)
	}
	return app, nil
}

func (g *Gateway) InsertContact(ctx context.Context, contact *models.ContactSubmission) (*models.ContactSubmission, error) {
	created, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.ContactSubmission, error) {
		return g.Contacts.InsertContact(ctx, contact)
	})
	if err != nil {
		logFailure("insert_contact", err)
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to send your message", err)
	}
	return created, nil
}

// Upload stores src at path and returns its public URL.
func (g *Gateway) Upload(ctx context.Context, path string, src io.Reader) (string, error) {
	_, err := call(ctx, g.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.Storage.Upload(ctx, path, src)
	})
	if err != nil {
		logFailure("upload", err, zap.String("path", path))
		return "", apperrors.Wrap(apperrors.KindUploadFailure, "Failed to upload file", err)
	}
	return g.Storage.PublicURL(path), nil
}

func (g *Gateway) DeleteObject(ctx context.Context, path string) error {
	_, err := call(ctx, g.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.Storage.Delete(ctx, path)
	})
	if err != nil {
		logFailure("delete_object", err, zap.String("path", path))
		return apperrors.Wrap(apperrors.KindUploadFailure, "Failed to delete file", err)
	}
	return nil
}

func (g *Gateway) SignUp(ctx context.Context, req SignUpRequest) (*models.Principal, error) {
	p, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.Principal, error) {
		return g.Auth.SignUp(ctx, req)
	})
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, ErrEmailTaken):
		return nil, apperrors.Validation("An account with this email already exists")
	case apperrors.Is(err, apperrors.KindValidation):
		return nil, err
	}
	logFailure("sign_up", err)
	return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to create account", err)
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	p, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.Principal, error) {
		return g.Auth.SignIn(ctx, email, password)
	})
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, apperrors.AuthRequired("Invalid email or password")
	}
	if err != nil {
		logFailure("sign_in", err)
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to sign in", err)
	}
	return p, nil
}

func (g *Gateway) GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	p, err := call(ctx, g.Timeout, func(ctx context.Context) (*models.Principal, error) {
		return g.Auth.GetPrincipal(ctx, id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.AuthRequired("Account no longer exists")
	}
	if err != nil {
		logFailure("get_principal", err, zap.String("user_id", id.String()))
		return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to load account", err)
	}
	return p, nil
}

func (g *Gateway) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := call(ctx, g.Timeout, func(ctx context.Context) (bool, error) {
		return g.Admins.IsAdmin(ctx, userID)
	})
	if err != nil {
		logFailure("is_admin", err, zap.String("user_id", userID.String()))
		return false, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to check admin access", err)
	}
	return ok, nil
}
