package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"public-complaint-api/models"
	"public-complaint-api/services"
	"public-complaint-api/services/servicetest"
)

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *memoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[jti] = ttl
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[jti]
	return ok, nil
}

func registerInput() services.RegisterInput {
	return services.RegisterInput{
		Name:                 "Budi Santoso",
		NIK:                  "5103010101010001",
		Email:                "Budi@Example.com",
		Password:             "rahasia123",
		PasswordConfirmation: "rahasia123",
		Phone:                "081234567890",
		BirthDate:            "1990-05-17",
	}
}

func newAuth(t *testing.T) (*services.AuthService, *servicetest.DB, *memoryRevoker) {
	t.Helper()
	db := servicetest.NewDB(nil)
	revoker := &memoryRevoker{}
	return services.NewAuthService(db.UserStore(), "test-secret", time.Hour, revoker), db, revoker
}

func TestRegisterIssuesTokenForNewCitizen(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "rahasia123", user.Password)

	claims, err := auth.ParseToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, services.Actor{UserID: user.ID, Role: models.RoleUser}, claims.Actor())
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()
	_, _, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, registerInput())
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "nik")

	bad := registerInput()
	bad.Email = "lain@example.com"
	bad.NIK = "12345"
	bad.PasswordConfirmation = "berbeda123"
	_, _, err = auth.Register(ctx, bad)
	fields = fieldErrors(t, err)
	assert.Contains(t, fields, "nik")
	assert.Contains(t, fields, "password_confirmation")
}

func TestLoginRejectsWrongPasswordAndInactiveAccounts(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()
	user, _, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)

	_, token, err := auth.Login(ctx, services.LoginInput{Email: "budi@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = auth.Login(ctx, services.LoginInput{Email: "budi@example.com", Password: "salah"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, _, err = auth.Login(ctx, services.LoginInput{Email: "tidakada@example.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, _, err = auth.Login(ctx, services.LoginInput{})
	assert.ErrorIs(t, err, services.ErrValidation)

	user.IsActive = false
	require.NoError(t, db.UserStore().Update(ctx, user))
	_, _, err = auth.Login(ctx, services.LoginInput{Email: "budi@example.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = auth.ParseToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated, "deactivated users lose their sessions")
}

func TestParseTokenRefreshesRoleAndRejectsForeignTokens(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()
	user, token, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)

	user.Role = models.RoleAdmin
	require.NoError(t, db.UserStore().Update(ctx, user))
	claims, err := auth.ParseToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, claims.Actor().IsAdmin())

	other := services.NewAuthService(db.UserStore(), "another-secret", time.Hour, nil)
	_, err = other.ParseToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = auth.ParseToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, _, revoker := newAuth(t)
	ctx := context.Background()
	_, token, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)

	claims, err := auth.ParseToken(ctx, token)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, claims))

	ttl, ok := revoker.revoked[claims.ID]
	require.True(t, ok)
	assert.True(t, ttl > 0 && ttl <= time.Hour)

	_, err = auth.ParseToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestProfileAndPasswordChanges(t *testing.T) {
	auth, _, _ := newAuth(t)
	ctx := context.Background()
	user, _, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)
	second := registerInput()
	second.Email = "siti@example.com"
	second.NIK = "5103010101010002"
	_, _, err = auth.Register(ctx, second)
	require.NoError(t, err)

	actor := services.Actor{UserID: user.ID, Role: user.Role}

	_, err = auth.UpdateProfile(ctx, actor, services.ProfileInput{Name: "Budi", Email: "siti@example.com"})
	assert.Contains(t, fieldErrors(t, err), "email")

	updated, err := auth.UpdateProfile(ctx, actor, services.ProfileInput{Name: " Budi S. ", Email: "budi.s@example.com", Job: "Petani"})
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", updated.Name)
	require.NotNil(t, updated.Job)
	assert.Equal(t, "Petani", *updated.Job)

	err = auth.ChangePassword(ctx, actor, services.PasswordInput{CurrentPassword: "salah", Password: "baru12345", PasswordConfirmation: "baru12345"})
	assert.Contains(t, fieldErrors(t, err), "current_password")

	require.NoError(t, auth.ChangePassword(ctx, actor, services.PasswordInput{CurrentPassword: "rahasia123", Password: "baru12345", PasswordConfirmation: "baru12345"}))
	_, _, err = auth.Login(ctx, services.LoginInput{Email: "budi.s@example.com", Password: "baru12345"})
	assert.NoError(t, err)

	_, err = auth.Me(ctx, services.Guest)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}
