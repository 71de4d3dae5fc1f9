package services

import (
	"context"
	"testing"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/testdb"
	"bursary-portal-backend/users/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpThenSignIn(t *testing.T) {
	svc := NewAuthService(repositories.NewUserRepository(testdb.Open(t)))
	ctx := context.Background()

	principal, err := svc.SignUp(ctx, gateway.SignUpRequest{
		FullName: "  Achieng Otieno ",
		Email:    "achieng@example.com",
		Password: "Passw0rdX",
		Phone:    "+254 700 000 001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Achieng Otieno", principal.FullName)

	signedIn, err := svc.SignIn(ctx, "ACHIENG@example.com", "Passw0rdX")
	require.NoError(t, err)
	assert.Equal(t, principal.ID, signedIn.ID)

	_, err = svc.SignIn(ctx, "achieng@example.com", "wrong")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "ghost@example.com", "Passw0rdX")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)

	loaded, err := svc.GetPrincipal(ctx, principal.ID)
	require.NoError(t, err)
	assert.Equal(t, "achieng@example.com", loaded.Email)
}

func TestValidateSignUp(t *testing.T) {
	valid := gateway.SignUpRequest{FullName: "Kip Rotich", Email: "kip@example.com", Password: "Passw0rdX"}
	assert.NoError(t, ValidateSignUp(valid))

	cases := map[string]func(r *gateway.SignUpRequest){
		"missing name":  func(r *gateway.SignUpRequest) { r.FullName = " " },
		"bad email":     func(r *gateway.SignUpRequest) { r.Email = "kip@" },
		"short":         func(r *gateway.SignUpRequest) { r.Password = "Pa1" },
		"no digit":      func(r *gateway.SignUpRequest) { r.Password = "Password" },
		"no uppercase":  func(r *gateway.SignUpRequest) { r.Password = "passw0rdx" },
		"letters phone": func(r *gateway.SignUpRequest) { r.Phone = "call me" },
	}
	for name, mutate := range cases {
		req := valid
		mutate(&req)
		err := ValidateSignUp(req)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), name)
	}
}

func TestGatewayMapsDuplicateSignUp(t *testing.T) {
	svc := NewAuthService(repositories.NewUserRepository(testdb.Open(t)))
	gw := &gateway.Gateway{Auth: svc}
	req := gateway.SignUpRequest{FullName: "Kip Rotich", Email: "kip@example.com", Password: "Passw0rdX"}

	_, err := gw.SignUp(context.Background(), req)
	require.NoError(t, err)

	_, err = gw.SignUp(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "already exists")
}
