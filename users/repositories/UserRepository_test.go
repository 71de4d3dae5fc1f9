package repositories

import (
	"context"
	"testing"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesAndNormalises(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, &models.User{FullName: "Wanjiku Mwangi", Email: " Wanjiku@Example.COM ", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "wanjiku@example.com", user.Email)
	assert.NotEqual(t, "Secret123", user.Password)
	assert.True(t, CheckPasswordHash("Secret123", user.Password))
	assert.True(t, user.Active)

	found, err := repo.GetUserByEmail(ctx, "WANJIKU@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.CreateUser(ctx, &models.User{FullName: "Someone", Email: "wanjiku@example.com", Password: "Other1234"})
	assert.ErrorIs(t, err, gateway.ErrEmailTaken)
}

func TestUnknownUsersAreNotFound(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))

	_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	_, err = repo.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestAdminAllowList(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, &models.User{FullName: "Bursary Officer", Email: "officer@example.com", Password: "Secret123"})
	require.NoError(t, err)

	isAdmin, err := repo.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	admin, err := repo.GrantAdmin(ctx, user.ID, "", "cli")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAdminRole, admin.Role)

	again, err := repo.GrantAdmin(ctx, user.ID, "reviewer", "cli")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	isAdmin, err = repo.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "reviewer", admins[0].Role)
	require.NotNil(t, admins[0].User)
	assert.Equal(t, "officer@example.com", admins[0].User.Email)

	require.NoError(t, repo.RevokeAdmin(ctx, user.ID))
	assert.ErrorIs(t, repo.RevokeAdmin(ctx, user.ID), gateway.ErrNotFound)

	_, err = repo.GrantAdmin(ctx, uuid.New(), "", "cli")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, &models.User{FullName: "Otieno", Email: "otieno@example.com", Password: "Secret123"})
	require.NoError(t, err)

	at := time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, user.ID, at))

	found, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, at.Equal(found.LastLoginAt.UTC()))
}
