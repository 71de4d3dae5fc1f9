package services

import (
	"context"
	"strings"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/session"
	"bursary-portal-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheResource prefixes every cached admin listing.
const CacheResource = "applications"

type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateCache(ctx context.Context, resourceType string) error
}

type ApplicationSearcher interface {
	SearchApplicationIDs(query string, limit int) ([]uuid.UUID, error)
}

// searchLimit caps the hits a free-text query can return. Narrow the
// query or add filters to see matches beyond it.
const searchLimit = 500

type ListFilters struct {
	ApplicationType string
	Status          string
	SchoolName      string
	Query           string
}

type Stats struct {
	Total    int                              `json:"total"`
	ByStatus map[models.ApplicationStatus]int `json:"by_status"`
	ByType   map[models.ApplicationType]int   `json:"by_type"`
}

// StatusChangeResult carries the updated application and the refreshed
// list. Applications and Stats are nil when the refresh failed; the
// update itself still stands.
type StatusChangeResult struct {
	Application  *models.Application  `json:"application"`
	Applications []models.Application `json:"applications"`
	Stats        *Stats               `json:"stats"`
}

// ReviewService is the admin side: listing every application and
// recording decisions. Cache and Search are optional.
type ReviewService struct {
	Gateway *gateway.Gateway
	Cache   ListCache
	Search  ApplicationSearcher
	Hooks   []ApplicationHook

	now func() time.Time
}

func NewReviewService(gw *gateway.Gateway, cache ListCache, search ApplicationSearcher, hooks ...ApplicationHook) *ReviewService {
	return &ReviewService{Gateway: gw, Cache: cache, Search: search, Hooks: hooks, now: time.Now}
}

// Guard admits signed-in admins only.
func (s *ReviewService) Guard(snap session.Snapshot) error {
	if !snap.SignedIn() {
		return apperrors.AuthRequired("Please sign in to continue")
	}
	if !snap.IsAdmin {
		return apperrors.AccessDenied("Admin access is required")
	}
	return nil
}

func parseListFilters(f ListFilters) (gateway.ApplicationFilters, error) {
	var out gateway.ApplicationFilters
	if v := strings.TrimSpace(f.ApplicationType); v != "" && v != "all" {
		out.ApplicationType = models.ApplicationType(strings.ToLower(v))
		if !out.ApplicationType.Valid() {
			return out, apperrors.Validation("Unknown application type %q", v)
		}
	}
	if v := strings.TrimSpace(f.Status); v != "" && v != "all" {
		out.Status = models.ApplicationStatus(strings.ToLower(strings.ReplaceAll(v, " ", "_")))
		if !out.Status.Valid() {
			return out, apperrors.Validation("Unknown application status %q", v)
		}
	}
	out.SchoolName = strings.TrimSpace(f.SchoolName)
	return out, nil
}

// ListAll returns every application matching filters, newest first.
func (s *ReviewService) ListAll(ctx context.Context, snap session.Snapshot, filters ListFilters) ([]models.Application, error) {
	if err := s.Guard(snap); err != nil {
		return nil, err
	}
	parsed, err := parseListFilters(filters)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(filters.Query)
	if query != "" && s.Search != nil {
		ids, err := s.Search.SearchApplicationIDs(query, searchLimit)
		if err != nil {
			config.Logger.Error("Application search failed", zap.String("query", query), zap.Error(err))
			return nil, apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to search applications", err)
		}
		if ids == nil {
			ids = []uuid.UUID{}
		}
		if len(ids) >= searchLimit {
			config.Logger.Warn("Application search hit the result limit",
				zap.String("query", query), zap.Int("limit", searchLimit))
		}
		parsed.IDs = ids
		return s.Gateway.ListApplications(ctx, parsed)
	}

	if query != "" {
		apps, err := s.Gateway.ListApplications(ctx, parsed)
		if err != nil {
			return nil, err
		}
		return matchQuery(apps, query), nil
	}

	key := utils.GenerateHash(CacheResource, map[string]string{
		"application_type": string(parsed.ApplicationType),
		"status":           string(parsed.Status),
		"school_name":      strings.ToLower(parsed.SchoolName),
	})
	if s.Cache != nil {
		var cached []models.Application
		hit, err := s.Cache.Get(ctx, key, &cached)
		if err != nil {
			config.Logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	apps, err := s.Gateway.ListApplications(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, apps); err != nil {
			config.Logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return apps, nil
}

// matchQuery is the in-memory fallback when no search index is wired.
func matchQuery(apps []models.Application, query string) []models.Application {
	q := strings.ToLower(query)
	var out []models.Application
	for _, app := range apps {
		haystack := strings.ToLower(strings.Join([]string{app.FullName, app.Email, app.SchoolName, app.County, app.ReferenceID()}, " "))
		if strings.Contains(haystack, q) {
			out = append(out, app)
		}
	}
	return out
}

// SetStatus records an admin decision. Any status may follow any other.
func (s *ReviewService) SetStatus(ctx context.Context, snap session.Snapshot, id string, status string, comment *string) (*StatusChangeResult, error) {
	if err := s.Guard(snap); err != nil {
		return nil, err
	}

	appID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperrors.NotFound("Application not found")
	}
	newStatus := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.Valid() {
		return nil, apperrors.Validation("Unknown application status %q", status)
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		comment = utils.NonEmptyStringPtr(trimmed)
	}

	app, err := s.Gateway.UpdateReview(ctx, appID, gateway.ReviewUpdate{
		Status:     newStatus,
		Comment:    comment,
		ReviewedBy: snap.Principal.ID,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	config.Logger.Info("Application status changed",
		zap.String("application_id", app.ID.String()),
		zap.String("status", string(app.Status)),
		zap.String("reviewed_by", snap.Principal.ID.String()))

	if s.Cache != nil {
		if err := s.Cache.InvalidateCache(context.WithoutCancel(ctx), CacheResource); err != nil {
			config.Logger.Warn("Cache invalidation failed", zap.Error(err))
		}
	}
	runHooks(ctx, s.Hooks, app)

	result := &StatusChangeResult{Application: app}
	apps, err := s.Gateway.ListApplications(ctx, gateway.ApplicationFilters{})
	if err != nil {
		config.Logger.Warn("Failed to refresh applications after status change",
			zap.String("application_id", app.ID.String()), zap.Error(err))
		return result, nil
	}
	stats := ComputeStats(apps)
	result.Applications = apps
	result.Stats = &stats
	return result, nil
}

// ComputeStats counts apps per status and per type. Every known status and
// type is present, possibly as zero.
func ComputeStats(apps []models.Application) Stats {
	stats := Stats{
		Total:    len(apps),
		ByStatus: make(map[models.ApplicationStatus]int, len(models.ApplicationStatuses)),
		ByType: map[models.ApplicationType]int{
			models.EducationApplication: 0,
			models.HealthApplication:    0,
		},
	}
	for _, s := range models.ApplicationStatuses {
		stats.ByStatus[s] = 0
	}
	for _, app := range apps {
		stats.ByStatus[app.Status]++
		stats.ByType[app.ApplicationType]++
	}
	return stats
}
