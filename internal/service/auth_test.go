package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frackdev/frack/internal/db"
	ferrors "github.com/frackdev/frack/internal/errors"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	database := db.NewTestDB(t)
	t.Cleanup(func() { database.Close() })
	return NewAuthService(database.DB)
}

func TestCreateUserAndLookup(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	username, err := svc.CreateUser(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	got, err := svc.UsernameFromEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestCreateUserDefaultsUsernameToEmail(t *testing.T) {
	svc := newTestAuth(t)

	username, err := svc.CreateUser(context.Background(), "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", username)
}

func TestCreateUserRequiresEmail(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.CreateUser(context.Background(), "", "alice")
	assert.Equal(t, ferrors.KindValidation, ferrors.GetKind(err))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "other@example.com", "alice")
	assert.Equal(t, ferrors.KindCollision, ferrors.GetKind(err))
}

func TestCreateUserEmailBoundElsewhere(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "alice@example.com", "alice2")
	assert.Equal(t, ferrors.KindCollision, ferrors.GetKind(err))
}

func TestUsernameFromEmailNotFound(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.UsernameFromEmail(context.Background(), "nobody@example.com")
	assert.Equal(t, ferrors.KindNotFound, ferrors.GetKind(err))
}

func TestCookieFromUsernameIsStable(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	first, err := svc.CookieFromUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, first, 40)

	second, err := svc.CookieFromUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUsernameFromCookie(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	cookie, err := svc.CookieFromUsername(ctx, "alice")
	require.NoError(t, err)

	username, err := svc.UsernameFromCookie(ctx, cookie)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	unknown, err := svc.UsernameFromCookie(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestLoginCreatesAccountOnFirstUse(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	username, cookie, err := svc.Login(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", username)
	assert.Len(t, cookie, 40)

	// Second login reuses the account and cookie.
	again, sameCookie, err := svc.Login(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, username, again)
	assert.Equal(t, cookie, sameCookie)
}
