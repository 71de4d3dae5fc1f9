package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bursary-portal-backend/contacts/repositories"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	contacts []*models.ContactSubmission
}

func (n *recordingNotifier) ContactReceived(ctx context.Context, contact *models.ContactSubmission) error {
	n.contacts = append(n.contacts, contact)
	return nil
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db := testdb.Open(t)
	notifier := &recordingNotifier{}
	ctl := &ContactController{
		Gateway:  &gateway.Gateway{Contacts: repositories.NewContactRepository(db)},
		Notifier: notifier,
	}
	app := fiber.New(fiber.Config{Immutable: true})
	app.Post("/api/v1/contact", ctl.SubmitContact)
	return app, db, notifier
}

func postContact(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSubmitContactStoresAndNotifies(t *testing.T) {
	app, db, notifier := setup(t)

	resp, out := postContact(t, app, `{"name":"Kip Rotich","email":"Kip@Example.com","subject":"Deadline","message":"When does the window close?"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := out["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.NotEmpty(t, data["created_at"])

	var stored models.ContactSubmission
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "kip@example.com", stored.Email)
	require.Len(t, notifier.contacts, 1)
	assert.Equal(t, stored.ID, notifier.contacts[0].ID)
}

func TestSubmitContactValidation(t *testing.T) {
	app, db, notifier := setup(t)

	resp, out := postContact(t, app, `{"name":"Kip","email":"kip@example.com","subject":" ","message":""}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "missing: subject, message", out["error"])

	resp, _ = postContact(t, app, `{"name":"Kip","email":"not-an-email","subject":"Hi","message":"Hello"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var count int64
	db.Model(&models.ContactSubmission{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, notifier.contacts)
}
