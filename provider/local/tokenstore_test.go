package local_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/go-session/provider/local"
)

func TestMemoryTokenStore(t *testing.T) {
	store := local.NewMemoryTokenStore()

	raw, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, raw)

	require.NoError(t, store.Save("token-value"))

	raw, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-value", raw)

	require.NoError(t, store.Clear())

	raw, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	store := local.NewFileTokenStore(path)

	raw, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, raw)

	require.NoError(t, store.Save("token-value"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a fresh store over the same path sees the token
	again := local.NewFileTokenStore(path)
	raw, err = again.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-value", raw)

	require.NoError(t, store.Clear())

	raw, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, raw)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}
