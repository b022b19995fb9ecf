// internal/config/write_test.go
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")
	for _, section := range []string{"[server]", "[tmdb]", "[cache]", "[log]", "${TMDB_API_KEY}"} {
		assert.Contains(t, string(content), section)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	_, err := os.Stat(path)
	assert.NoError(t, err, "file was not created")
}

func TestWriteDefault_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o600))

	err := WriteDefault(path, false)
	require.ErrorIs(t, err, ErrExists)
	content, _ := os.ReadFile(path)
	assert.Equal(t, "# mine\n", string(content), "existing file must be left alone")

	require.NoError(t, WriteDefault(path, true))
	content, _ = os.ReadFile(path)
	assert.Equal(t, defaultConfig, string(content))
}

func TestConfig_Write(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "127.0.0.1")
	assert.Contains(t, string(content), "9000")

	// round trip
	back, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, back.Server)
}

func TestConfig_Encode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))
	assert.Contains(t, buf.String(), "ttl_minutes = 15")
}
