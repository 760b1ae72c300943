package services

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"rentnest/auth"
	"rentnest/errors"
	"rentnest/repositories"
)

var testSecret = []byte("unit-test-secret")

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	return NewAuthService(repositories.NewUserRepository(db), testSecret, time.Hour)
}

func Test_Register_Then_Login(t *testing.T) {
	svc := newAuthService(t)

	token, err := svc.Register("alice", "alice@example.com", "Str0ng!Passw0rd")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token.String(), testSecret)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.NotEmpty(t, claims.UserID)

	loginToken, err := svc.Login("alice@example.com", "Str0ng!Passw0rd")
	require.NoError(t, err)

	loginClaims, err := auth.ValidateToken(loginToken.String(), testSecret)
	require.NoError(t, err)
	require.Equal(t, claims.UserID, loginClaims.UserID)
}

func Test_Register_Rejects_Weak_Password(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register("alice", "alice@example.com", "alllowercaseonly")
	require.ErrorIs(t, err, errors.ErrInvalidPassword)
}

func Test_Register_Rejects_Duplicate_Email(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register("alice", "alice@example.com", "Str0ng!Passw0rd")
	require.NoError(t, err)

	_, err = svc.Register("alice2", "alice@example.com", "Str0ng!Passw0rd")
	require.ErrorIs(t, err, errors.ErrUserAlreadyExists)
}

func Test_Login_Wrong_Password(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register("alice", "alice@example.com", "Str0ng!Passw0rd")
	require.NoError(t, err)

	_, err = svc.Login("alice@example.com", "Wr0ng!Passw0rd")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func Test_Login_Unknown_Email(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login("nobody@example.com", "Str0ng!Passw0rd")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}
