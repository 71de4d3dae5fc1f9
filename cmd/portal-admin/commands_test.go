package main

import (
	"bytes"
	"context"
	"testing"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/internal/testdb"
	"bursary-portal-backend/users/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, conn *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func() (*gorm.DB, error) { return conn, nil }, config.Settings{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGrantListRevoke(t *testing.T) {
	conn := testdb.Open(t)
	users := repositories.NewUserRepository(conn)
	user, err := users.CreateUser(context.Background(), &models.User{FullName: "Reviewer", Email: "reviewer@example.com", Password: "Passw0rdX"})
	require.NoError(t, err)

	out, err := run(t, conn, "grant", "reviewer@example.com", "--role", "county_officer")
	require.NoError(t, err)
	assert.Contains(t, out, "county_officer")

	isAdmin, err := users.IsAdmin(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	out, err = run(t, conn, "list")
	require.NoError(t, err)
	assert.Contains(t, out, user.ID.String())
	assert.Contains(t, out, "reviewer@example.com")

	_, err = run(t, conn, "revoke", user.ID.String())
	require.NoError(t, err)
	isAdmin, err = users.IsAdmin(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestGrantUnknownUser(t *testing.T) {
	conn := testdb.Open(t)
	_, err := run(t, conn, "grant", "nobody@example.com")
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := testdb.Open(t)

	out, err := run(t, conn, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 5")

	out, err = run(t, conn, "seed", "--admin", db.DemoApplicantEmail)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0")

	var count int64
	require.NoError(t, conn.Model(&models.Application{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)

	var admins int64
	require.NoError(t, conn.Model(&models.AdminUser{}).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}
