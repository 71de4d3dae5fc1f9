package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/session"
	"bursary-portal-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012"

type fakeAccounts struct {
	users  map[uuid.UUID]*models.Principal
	admins map[uuid.UUID]bool
}

func (f *fakeAccounts) SignUp(ctx context.Context, req gateway.SignUpRequest) (*models.Principal, error) {
	return nil, gateway.ErrEmailTaken
}

func (f *fakeAccounts) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	return nil, gateway.ErrInvalidCredentials
}

func (f *fakeAccounts) GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	if p, ok := f.users[id]; ok {
		return p, nil
	}
	return nil, gateway.ErrNotFound
}

func (f *fakeAccounts) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f.admins[userID], nil
}

type harness struct {
	app      *fiber.App
	ctx      *AppContext
	accounts *fakeAccounts
	refresh  *token.MemoryRefreshStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	maker, err := token.NewPasetoMaker(testKey)
	require.NoError(t, err)

	accounts := &fakeAccounts{users: map[uuid.UUID]*models.Principal{}, admins: map[uuid.UUID]bool{}}
	refresh := token.NewMemoryRefreshStore()
	appCtx := &AppContext{
		PasetoMaker:   maker,
		RefreshTokens: refresh,
		Gateway:       &gateway.Gateway{Auth: accounts, Admins: accounts, Timeout: time.Second},
		Sessions:      session.NewRegistry(time.Hour),
		Cookies:       CookieSettings{AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour},
	}

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(SessionMiddleware(appCtx), Identify(appCtx))
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error {
		return c.JSON(CurrentSession(c).Snapshot())
	})
	app.Get("/admin", RequireAdmin(appCtx), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return &harness{app: app, ctx: appCtx, accounts: accounts, refresh: refresh}
}

func (h *harness) addUser(admin bool) *models.Principal {
	p := &models.Principal{ID: uuid.New(), Email: "user@example.com", FullName: "Test User"}
	h.accounts.users[p.ID] = p
	h.accounts.admins[p.ID] = admin
	return p
}

func (h *harness) do(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAnonymousRequestGetsSessionButNoAccess(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, "/me")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	sessCookie := findCookie(resp, SessionCookie)
	require.NotNil(t, sessCookie)

	_, ok := h.ctx.Sessions.Get(sessCookie.Value)
	assert.True(t, ok)

	// the same cookie keeps the same session
	resp = h.do(t, "/me", sessCookie)
	assert.Nil(t, findCookie(resp, SessionCookie))
	assert.Equal(t, 1, h.ctx.Sessions.Len())
}

func TestAccessTokenSignsSessionIn(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(false)
	access, err := h.ctx.PasetoMaker.CreateToken(user.ID, user.Email, time.Minute)
	require.NoError(t, err)

	resp := h.do(t, "/me", &http.Cookie{Name: AccessTokenCookie, Value: access})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	sess, ok := h.ctx.Sessions.Get(findCookie(resp, SessionCookie).Value)
	require.True(t, ok)
	require.NotNil(t, sess.Principal())
	assert.Equal(t, user.ID, sess.Principal().ID)
	assert.False(t, sess.IsAdmin())
}

func TestRefreshTokenIsRotatedOnce(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(false)
	refresh, err := h.ctx.PasetoMaker.CreateToken(user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	require.NoError(t, h.refresh.Save(context.Background(), refresh, user.ID.String(), time.Hour))

	resp := h.do(t, "/me", &http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	newRefresh := findCookie(resp, RefreshTokenCookie)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, refresh, newRefresh.Value)
	assert.NotNil(t, findCookie(resp, AccessTokenCookie))
	assert.Equal(t, 1, h.refresh.Len())

	// replaying the old refresh token in a fresh session gets nowhere
	resp = h.do(t, "/me", &http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMissingCookiesSignSessionOut(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(false)
	access, err := h.ctx.PasetoMaker.CreateToken(user.ID, user.Email, time.Minute)
	require.NoError(t, err)

	resp := h.do(t, "/me", &http.Cookie{Name: AccessTokenCookie, Value: access})
	sessCookie := findCookie(resp, SessionCookie)
	require.NotNil(t, sessCookie)

	resp = h.do(t, "/me", sessCookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	sess, _ := h.ctx.Sessions.Get(sessCookie.Value)
	assert.Nil(t, sess.Principal())
}

func TestRequireAdmin(t *testing.T) {
	h := newHarness(t)
	applicant := h.addUser(false)
	officer := h.addUser(true)

	resp := h.do(t, "/admin")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	access, _ := h.ctx.PasetoMaker.CreateToken(applicant.ID, applicant.Email, time.Minute)
	resp = h.do(t, "/admin", &http.Cookie{Name: AccessTokenCookie, Value: access})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	access, _ = h.ctx.PasetoMaker.CreateToken(officer.ID, officer.Email, time.Minute)
	resp = h.do(t, "/admin", &http.Cookie{Name: AccessTokenCookie, Value: access})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// revocation applies on the next request of the same session
	sessCookie := findCookie(resp, SessionCookie)
	h.accounts.admins[officer.ID] = false
	resp = h.do(t, "/admin", sessCookie, &http.Cookie{Name: AccessTokenCookie, Value: access})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	sess, _ := h.ctx.Sessions.Get(sessCookie.Value)
	assert.False(t, sess.IsAdmin())
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(2)
	now := time.Now()

	assert.True(t, limiter.Allow("10.0.0.1", now))
	assert.True(t, limiter.Allow("10.0.0.1", now))
	assert.False(t, limiter.Allow("10.0.0.1", now))
	assert.True(t, limiter.Allow("10.0.0.2", now))
	assert.True(t, limiter.Allow("10.0.0.1", now.Add(31*time.Second)))

	assert.Equal(t, 2, limiter.Prune(now.Add(time.Hour), time.Minute))
}
