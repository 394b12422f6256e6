package biz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := biz.HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.NoError(t, biz.VerifyPassword(hash, "hunter22"))
	require.Error(t, biz.VerifyPassword(hash, "hunter23"))
}

func TestJWTRoundTrip(t *testing.T) {
	s, _ := newArmedStore(t)

	hash, err := biz.HashPassword("correct horse")
	require.NoError(t, err)

	sysCtx := authz.NewSystemContext(context.Background())
	user, err := s.Users().Create(sysCtx, &objects.User{Email: "jwt@crm.test", Password: hash})
	require.NoError(t, err)

	auth, err := biz.NewAuthService(biz.AuthServiceParams{
		Store:  s,
		Config: biz.AuthConfig{SecretKey: "test-secret", TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	ctx := context.Background()

	token, err := auth.GenerateJWTToken(ctx, user)
	require.NoError(t, err)

	got, err := auth.AuthenticateJWTToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = auth.AuthenticateJWTToken(ctx, token+"tampered")
	require.ErrorIs(t, err, biz.ErrInvalidJWT)
}

func TestAuthenticateUser(t *testing.T) {
	s, _ := newArmedStore(t)

	hash, err := biz.HashPassword("correct horse")
	require.NoError(t, err)

	sysCtx := authz.NewSystemContext(context.Background())
	_, err = s.Users().Create(sysCtx, &objects.User{Email: "login@crm.test", Password: hash})
	require.NoError(t, err)

	auth, err := biz.NewAuthService(biz.AuthServiceParams{
		Store:  s,
		Config: biz.AuthConfig{SecretKey: "test-secret", TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	ctx := context.Background()

	user, err := auth.AuthenticateUser(ctx, "login@crm.test", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "login@crm.test", user.Email)

	_, err = auth.AuthenticateUser(ctx, "login@crm.test", "wrong")
	require.ErrorIs(t, err, biz.ErrInvalidPassword)

	// Unknown emails look the same as bad passwords.
	_, err = auth.AuthenticateUser(ctx, "nobody@crm.test", "correct horse")
	require.ErrorIs(t, err, biz.ErrInvalidPassword)
}
