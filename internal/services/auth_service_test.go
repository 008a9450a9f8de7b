package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/auth"
	"medassist-backend/internal/config"
	"medassist-backend/internal/models"
	"medassist-backend/internal/store/memory"
)

const testSecret = "test-secret"

func newTestAuthService() *AuthService {
	return NewAuthService(memory.NewMemoryStore(), &config.Config{
		JWTSecret:       testSecret,
		TokenExpiration: time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()

	token, user, err := svc.Register(ctx, models.RegisterRequest{
		Name:     "  Asha Rao ",
		Email:    "Asha@Example.com",
		Password: "secret1",
		Phone:    "+91 98765-43210",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.HashedPassword)

	claims, err := auth.ParseAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, loggedIn, err := svc.Login(ctx, "ASHA@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)
}

func TestRegisterValidation(t *testing.T) {
	valid := models.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"}

	tests := []struct {
		name   string
		mutate func(r *models.RegisterRequest)
	}{
		{"short name", func(r *models.RegisterRequest) { r.Name = "R" }},
		{"missing email", func(r *models.RegisterRequest) { r.Email = "" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "12345" }},
		{"bad phone", func(r *models.RegisterRequest) { r.Phone = "call me" }},
		{"admin role", func(r *models.RegisterRequest) { r.Role = models.RoleAdmin }},
		{"unknown role", func(r *models.RegisterRequest) { r.Role = "nurse" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, _, err := newTestAuthService().Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterDoctorRole(t *testing.T) {
	_, user, err := newTestAuthService().Register(context.Background(), models.RegisterRequest{
		Name: "Dr. Mehta", Email: "mehta@example.com", Password: "secret1", Role: models.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()
	req := models.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"}

	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "RAVI@example.com"
	_, _, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()
	_, _, err := svc.Register(ctx, models.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{"ravi@example.com", "wrong-password"},
		{"nobody@example.com", "secret1"},
		{"", "secret1"},
		{"ravi@example.com", ""},
	} {
		_, _, err := svc.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestMeUnknownUser(t *testing.T) {
	_, err := newTestAuthService().Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
