package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apprepos "bursary-portal-backend/applications/repositories"
	appservices "bursary-portal-backend/applications/services"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/testdb"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/session"
	"bursary-portal-backend/token"
	"bursary-portal-backend/users/repositories"
	"bursary-portal-backend/users/services"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct{ name, body string }

func (f memFile) Name() string { return f.name }
func (f memFile) Size() int64  { return int64(len(f.body)) }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type authHarness struct {
	app         *fiber.App
	appCtx      *middleware.AppContext
	submissions *appservices.SubmissionService
	users       repositories.UserRepository
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	db := testdb.Open(t)
	users := repositories.NewUserRepository(db)
	maker, err := token.NewPasetoMaker("12345678901234567890123456789012")
	require.NoError(t, err)

	gw := &gateway.Gateway{
		Applications: apprepos.NewApplicationRepository(db),
		Storage:      utils.NewPublicFileStorage(t.TempDir(), "http://localhost:8080/uploads"),
		Auth:         services.NewAuthService(users),
		Admins:       users,
		Timeout:      5 * time.Second,
	}
	appCtx := &middleware.AppContext{
		PasetoMaker:   maker,
		RefreshTokens: token.NewMemoryRefreshStore(),
		Gateway:       gw,
		Sessions:      session.NewRegistry(time.Hour),
		Cookies:       middleware.CookieSettings{AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour},
	}
	submissions := appservices.NewSubmissionService(gw)

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(middleware.SessionMiddleware(appCtx), middleware.Identify(appCtx))
	ctl := &AuthController{App: appCtx, Submissions: submissions, WaitTimeout: 3 * time.Second}
	auth := app.Group("/api/v1/auth")
	auth.Post("/signup", ctl.SignUp)
	auth.Post("/login", ctl.Login)
	auth.Post("/logout", ctl.Logout)
	auth.Get("/me", ctl.Me)

	return &authHarness{app: app, appCtx: appCtx, submissions: submissions, users: users}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func (h *authHarness) post(t *testing.T, path, body string, cookies ...*http.Cookie) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestSignUpSignsSessionIn(t *testing.T) {
	h := newAuthHarness(t)

	resp, env := h.post(t, "/api/v1/auth/signup", `{"full_name":"Achieng Otieno","email":"achieng@example.com","password":"Passw0rdX"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var access *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			access = c
		}
	}
	require.NotNil(t, access)

	_, env = h.post(t, "/api/v1/auth/signup", `{"full_name":"Achieng Otieno","email":"achieng@example.com","password":"Passw0rdX"}`)
	assert.Equal(t, "VALIDATION_ERROR", env.Kind)
}

func TestLoginWithBadPasswordIsUnauthorized(t *testing.T) {
	h := newAuthHarness(t)
	_, env := h.post(t, "/api/v1/auth/signup", `{"full_name":"Kip Rotich","email":"kip@example.com","password":"Passw0rdX"}`)
	require.True(t, env.Success)

	resp, env := h.post(t, "/api/v1/auth/login", `{"email":"kip@example.com","password":"nope"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_REQUIRED", env.Kind)
}

func TestLoginResumesParkedSubmission(t *testing.T) {
	h := newAuthHarness(t)
	_, err := h.users.CreateUser(context.Background(), userFixture())
	require.NoError(t, err)

	sess := h.appCtx.Sessions.Create()
	fillDraft(t, sess.Draft())
	_, err = h.submissions.Submit(context.Background(), sess)
	require.Error(t, err)

	resp, env := h.post(t, "/api/v1/auth/login", `{"email":"wanjiru@example.com","password":"Passw0rdX"}`,
		&http.Cookie{Name: middleware.SessionCookie, Value: sess.ID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var data struct {
		Submission appservices.Outcome `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, appservices.StateSubmitted, data.Submission.State)
	assert.NotEmpty(t, data.Submission.ReferenceID)
	assert.True(t, sess.Draft().Submitted())
}

func TestLogoutClearsSession(t *testing.T) {
	h := newAuthHarness(t)
	resp, _ := h.post(t, "/api/v1/auth/signup", `{"full_name":"Kip Rotich","email":"kip@example.com","password":"Passw0rdX"}`)

	var cookies []*http.Cookie
	for _, c := range resp.Cookies() {
		cookies = append(cookies, c)
	}
	resp, env := h.post(t, "/api/v1/auth/logout", `{}`, cookies...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	for _, c := range cookies {
		if c.Name == middleware.SessionCookie {
			sess, ok := h.appCtx.Sessions.Get(c.Value)
			require.True(t, ok)
			assert.Nil(t, sess.Principal())
		}
	}
}

func TestMeRequiresSignIn(t *testing.T) {
	h := newAuthHarness(t)
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func fillDraft(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	values := [][2]string{
		{"full_name", "Wanjiru Kamau"}, {"email", "wanjiru@example.com"}, {"phone", "+254711000000"},
		{"national_id", "22334455"}, {"date_of_birth", "2006-09-30"}, {"gender", "female"},
		{"county", "Kiambu"}, {"sub_county", "Juja"}, {"division", "Juja"}, {"location", "Kalimoni"},
		{"sub_location", "Gachororo"}, {"village", "Highpoint"},
		{"school_name", "Juja Girls"}, {"school_level", "secondary"}, {"class_year", "Form 4"},
		{"application_type", "education"}, {"household_size", "6"}, {"reason", "Fees balance"},
	}
	for _, kv := range values {
		require.NoError(t, w.SetField(kv[0], kv[1]))
	}
	_, err := w.AttachDocument(wizard.IDDocument, memFile{"id.pdf", "id"})
	require.NoError(t, err)
	_, err = w.AttachDocument(wizard.SchoolFeesStructure, memFile{"fees.pdf", "fees"})
	require.NoError(t, err)
}

func userFixture() *models.User {
	return &models.User{FullName: "Wanjiru Kamau", Email: "wanjiru@example.com", Password: "Passw0rdX"}
}
