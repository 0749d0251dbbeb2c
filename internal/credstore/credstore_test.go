// ABOUTME: Tests for the fallback credential store
// ABOUTME: Covers save/read/clear round trips, hints, and idempotent clears

package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveReadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token")
	s := NewFileStore(path)

	require.False(t, s.Present())
	_, err := s.Read()
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, s.Save("tok-abc123"))
	assert.True(t, s.Present())

	token, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc123", token)

	require.NoError(t, s.Clear())
	assert.False(t, s.Present())
	_, err = s.Read()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "token"))

	// Clearing a store that never held a token must not fail: logout paths
	// call Clear unconditionally.
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFileStore(path)
	require.NoError(t, s.Save("secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_EmptyFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	s := NewFileStore(path)
	_, err := s.Read()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	assert.False(t, s.Present())
	require.NoError(t, s.Save("tok"))
	assert.True(t, s.Present())

	token, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, s.Clear())
	assert.False(t, s.Present())
	_, err = s.Read()
	assert.ErrorIs(t, err, ErrNoCredential)
}
