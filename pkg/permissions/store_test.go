package permissions

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingFile(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "permissions.json"))
	require.NoError(t, err)

	assert.False(t, s.IsCommandTrusted("ls"))
	assert.Empty(t, s.Commands())
}

func TestTrustCommand_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")

	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.TrustCommand("ls"))
	require.NoError(t, s.TrustCommand("git"))
	assert.True(t, s.IsCommandTrusted("ls"))

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsCommandTrusted("ls"))
	assert.True(t, reloaded.IsCommandTrusted("git"))
	assert.False(t, reloaded.IsCommandTrusted("rm"))
	assert.Equal(t, []string{"git", "ls"}, reloaded.Commands())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"trusted_commands":["git","ls"]}`, string(data))
}

func TestTrustCommand_Empty(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, err)

	assert.Error(t, s.TrustCommand(""))
	assert.False(t, s.IsCommandTrusted(""))
}

func TestRevokeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.TrustCommand("docker"))
	require.NoError(t, s.RevokeCommand("docker"))
	require.NoError(t, s.RevokeCommand("never-trusted"))

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.False(t, reloaded.IsCommandTrusted("docker"))
}

func TestNew_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := New(path)
	require.ErrorIs(t, err, ErrCorrupt)
	require.NotNil(t, s)

	require.NoError(t, s.TrustCommand("ls"))

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsCommandTrusted("ls"))
}

func TestNew_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := New(path)
	assert.NoError(t, err)
}

func TestStore_Concurrent(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, cmd := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.TrustCommand(cmd))
			_ = s.IsCommandTrusted(cmd)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Commands(), 4)
}
