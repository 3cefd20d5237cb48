package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/models"
)

func newAuthService(repo authUserRepository, secret string) *AuthService {
	return NewAuthService(repo, zap.NewNop(), AuthConfig{Secret: secret, Expiration: time.Hour})
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockUserRepo(testUsuario(7, "maestra", "maestra@example.com", true, false))
	svc := newAuthService(repo, "test_secret")

	res, user, err := svc.Login(context.Background(), models.LoginRequest{Username: "maestra", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(7), user.ID)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "maestra", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestAuthServiceLoginBadCredentials(t *testing.T) {
	repo := newMockUserRepo(testUsuario(7, "maestra", "maestra@example.com", true, false))
	svc := newAuthService(repo, "test_secret")

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Username: "maestra", Password: "wrong"})
	assertErrCode(t, err, http.StatusNotFound)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "nadie", Password: "secret"})
	assertErrCode(t, err, http.StatusNotFound)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{})
	assertErrCode(t, err, http.StatusNotFound)
}

func TestAuthServiceAdminFlagEmbedded(t *testing.T) {
	repo := newMockUserRepo(testUsuario(1, "admin", "admin@example.com", true, true))
	svc := newAuthService(repo, "test_secret")

	res, _, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestAuthServiceValidateTokenBadSignature(t *testing.T) {
	repo := newMockUserRepo(testUsuario(7, "maestra", "maestra@example.com", true, false))
	issuer := newAuthService(repo, "one_secret")
	verifier := newAuthService(repo, "other_secret")

	token, err := issuer.GenerateToken(testUsuario(7, "maestra", "maestra@example.com", true, false))
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assertErrCode(t, err, http.StatusUnauthorized)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	repo := newMockUserRepo(testUsuario(7, "maestra", "maestra@example.com", true, false))
	svc := NewAuthService(repo, zap.NewNop(), AuthConfig{Secret: "test_secret", Expiration: -time.Minute})

	token, err := svc.GenerateToken(testUsuario(7, "maestra", "maestra@example.com", true, false))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assertErrCode(t, err, http.StatusUnauthorized)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(newMockUserRepo(), "test_secret")

	_, err := svc.ValidateToken("not.a.token")
	assertErrCode(t, err, http.StatusUnauthorized)
}
