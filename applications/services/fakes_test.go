package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/session"
	"bursary-portal-backend/wizard"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memFile struct {
	name string
	body string
}

func (f memFile) Name() string { return f.name }
func (f memFile) Size() int64  { return int64(len(f.body)) }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type fakeStore struct {
	mu        sync.Mutex
	apps      []models.Application
	foreign   []models.Application
	inserts   int
	listCalls int
	insertErr error
	listErr   error
	clock     time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (s *fakeStore) Insert(ctx context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.inserts++
	created := *app
	created.ID = uuid.New()
	s.clock = s.clock.Add(time.Minute)
	created.CreatedAt = s.clock
	created.UpdatedAt = s.clock
	s.apps = append(s.apps, created)
	return &created, nil
}

func (s *fakeStore) add(app models.Application) models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.CreatedAt.IsZero() {
		s.clock = s.clock.Add(time.Minute)
		app.CreatedAt = s.clock
	}
	s.apps = append(s.apps, app)
	return app
}

func newestFirst(apps []models.Application) []models.Application {
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps
}

func (s *fakeStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Application
	for _, app := range s.apps {
		if app.UserID == ownerID {
			out = append(out, app)
		}
	}
	// foreign rows simulate a store that ignores the owner filter
	out = append(out, s.foreign...)
	return newestFirst(out), nil
}

func (s *fakeStore) List(ctx context.Context, f gateway.ApplicationFilters) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}

	var ids map[uuid.UUID]bool
	if f.IDs != nil {
		ids = make(map[uuid.UUID]bool)
		for _, id := range f.IDs {
			ids[id] = true
		}
	}
	out := []models.Application{}
	for _, app := range s.apps {
		if f.ApplicationType != "" && app.ApplicationType != f.ApplicationType {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		if f.SchoolName != "" && !strings.Contains(strings.ToLower(app.SchoolName), strings.ToLower(f.SchoolName)) {
			continue
		}
		if ids != nil && !ids[app.ID] {
			continue
		}
		out = append(out, app)
	}
	return newestFirst(out), nil
}

func (s *fakeStore) UpdateReview(ctx context.Context, id uuid.UUID, u gateway.ReviewUpdate) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apps {
		if s.apps[i].ID == id {
			reviewedAt := u.ReviewedAt
			reviewer := u.ReviewedBy
			s.apps[i].Status = u.Status
			s.apps[i].AdminComments = u.Comment
			s.apps[i].ReviewedBy = &reviewer
			s.apps[i].ReviewedAt = &reviewedAt
			s.apps[i].UpdatedAt = reviewedAt
			updated := s.apps[i]
			return &updated, nil
		}
	}
	return nil, gateway.ErrNotFound
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]string
	uploads []string
	deleted []string
	// failOn makes uploads whose path contains it fail.
	failOn string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (s *fakeStorage) Upload(ctx context.Context, path string, src io.Reader) error {
	if s.failOn != "" && strings.Contains(path, s.failOn) {
		return errors.New("bucket quota exceeded")
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = string(body)
	s.uploads = append(s.uploads, path)
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) PublicURL(path string) string {
	return "https://portal.example/uploads/" + path
}

func (s *fakeStorage) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]models.Application
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]models.Application)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apps, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	out, ok := dest.(*[]models.Application)
	if !ok {
		return false, fmt.Errorf("unexpected dest %T", dest)
	}
	*out = append([]models.Application(nil), apps...)
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]models.Application(nil), value.([]models.Application)...)
	return nil
}

func (c *fakeCache) InvalidateCache(ctx context.Context, resourceType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	for key := range c.entries {
		if strings.HasPrefix(key, resourceType+":") {
			delete(c.entries, key)
		}
	}
	return nil
}

func newTestGateway(store *fakeStore, storage *fakeStorage) *gateway.Gateway {
	return &gateway.Gateway{Applications: store, Storage: storage, Timeout: 2 * time.Second}
}

var applicant = &models.Principal{ID: uuid.New(), Email: "achieng@example.com", FullName: "Achieng Otieno"}

var completeFields = map[wizard.Field]string{
	wizard.FullName: "Achieng Otieno", wizard.Email: "achieng@example.com", wizard.Phone: "+254700000001",
	wizard.NationalID: "12345678", wizard.DateOfBirth: "2008-04-12", wizard.Gender: "female",
	wizard.County: "Nairobi", wizard.SubCounty: "Westlands", wizard.Division: "Central",
	wizard.Location: "Kilimani", wizard.SubLocation: "Upper Hill", wizard.Village: "Ngong Road",
	wizard.SchoolName: "Central High", wizard.SchoolLevel: "secondary", wizard.ClassYear: "Form 3",
	wizard.ApplicationType: "education", wizard.HouseholdSize: "5", wizard.Reason: "School fees arrears",
	wizard.MonthlyIncome: "12,000", wizard.RequestedAmount: "35000.50",
}

// fillDraft completes every step of w. County is set first because it
// clears the sub-county.
func fillDraft(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	require.NoError(t, w.SetField(string(wizard.County), completeFields[wizard.County]))
	for f, v := range completeFields {
		if f == wizard.County {
			continue
		}
		require.NoError(t, w.SetField(string(f), v))
	}
	_, err := w.AttachDocument(wizard.IDDocument, memFile{"national-id.PDF", "id-bytes"})
	require.NoError(t, err)
	_, err = w.AttachDocument(wizard.SchoolFeesStructure, memFile{"fees.pdf", "fees-bytes"})
	require.NoError(t, err)
}

func newFilledSession(t *testing.T, principal *models.Principal) *session.Session {
	t.Helper()
	sess := session.New(uuid.NewString())
	if principal != nil {
		sess.SetIdentity(principal, false)
	}
	fillDraft(t, sess.Draft())
	return sess
}
