package service

import (
	"context"
	"testing"
	"time"

	"sageset/web/internal/domain"
	"sageset/web/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.NewAdminRepository(), "test-secret", time.Hour)

	_, err := svc.CreateAdmin(ctx, " Ops@SageSetFitness.com ", "correct horse")
	require.NoError(t, err)
	_, err = svc.CreateAdmin(ctx, "ops@sagesetfitness.com", "another pass")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, user, err := svc.Login(ctx, "ops@sagesetfitness.com", "correct horse")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	cred, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@sagesetfitness.com", cred.Email)
	assert.True(t, cred.Admin)
	assert.Equal(t, user.ID.Hex(), cred.UserID)

	_, err = svc.Verify(token + "x")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	other := NewAuthService(memory.NewAdminRepository(), "other-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAdminRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.AdminUser{Email: "viewer@sagesetfitness.com", PasswordHash: string(hash), Admin: false})
	require.NoError(t, err)

	svc := NewAuthService(repo, "test-secret", time.Hour)

	_, _, err = svc.Login(ctx, "viewer@sagesetfitness.com", "secret-pass")
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, _, err = svc.Login(ctx, "viewer@sagesetfitness.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@sagesetfitness.com", "secret-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = svc.CreateAdmin(ctx, "short@sagesetfitness.com", "abc")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.NewAdminRepository(), "test-secret", time.Nanosecond)
	_, err := svc.CreateAdmin(ctx, "ops@sagesetfitness.com", "correct horse")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "ops@sagesetfitness.com", "correct horse")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
