// ABOUTME: Tests for the dev authority's SQLite store
// ABOUTME: Covers user CRUD, session lifetime, and expiry cleanup

package authd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "authd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGetUser(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{
		ID:           "u1",
		Email:        "admin@vd.com",
		Name:         "Admin",
		Role:         "admin",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin@vd.com", got.Email)
	assert.Equal(t, "admin", got.Role)

	byEmail, err := s.GetUserByEmail(ctx, "admin@vd.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{ID: "u1", Email: "admin@vd.com", Name: "A", Role: "admin", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	dup := &User{ID: "u2", Email: "admin@vd.com", Name: "B", Role: "staff", PasswordHash: "h", CreatedAt: time.Now()}
	err := s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestStore_UserNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetUser(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUserByEmail(context.Background(), "nope@vd.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_UpdateUserPassword(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{ID: "u1", Email: "admin@vd.com", Name: "A", Role: "admin", PasswordHash: "old", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.UpdateUserPassword(ctx, "u1", "new"))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "nope", "x"), ErrUserNotFound)
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{ID: "u1", Email: "admin@vd.com", Name: "A", Role: "admin", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	session := &Session{
		ID:        "s1",
		UserID:    "u1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	_, err = s.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is fine: logout is idempotent.
	require.NoError(t, s.DeleteSession(ctx, "s1"))
}

func TestStore_ExpiredSessionNotReturned(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{ID: "u1", Email: "admin@vd.com", Name: "A", Role: "admin", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	session := &Session{
		ID:        "s1",
		UserID:    "u1",
		CreatedAt: time.Now().Add(-2 * time.Hour).UTC(),
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	_, err := s.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.DeleteExpiredSessions(ctx))
}
