package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "client.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(keyTheme, ThemeDark))
	require.NoError(t, store.Set(keyUnreadCount, 3))
	require.NoError(t, store.Set(keyAuthToken, "token"))
	require.NoError(t, store.Delete(keyAuthToken))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	var theme string
	ok, err := reopened.Get(keyTheme, &theme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ThemeDark, theme)

	var unread int
	_, err = reopened.Get(keyUnreadCount, &unread)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	ok, err = reopened.Get(keyAuthToken, new(string))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession(t *testing.T) {
	store := NewMemoryStore()
	s := signedInSession(t, store)

	restored, err := NewSession(store)
	require.NoError(t, err)
	assert.True(t, restored.IsAuthenticated())
	usr, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, "ana@tupad.edu.ar", usr.Email)

	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
	restored, err = NewSession(store)
	require.NoError(t, err)
	assert.False(t, restored.IsAuthenticated())
}
