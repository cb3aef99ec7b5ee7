package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Reads yaml file with env overrides", func(t *testing.T) {
		// Given: a config file and a token in the environment
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "http-port: \"8000\"\ngame:\n  round-seconds: 30\n  debounce-quiet: 500ms\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("TMDB_READ_ACCESS_TOKEN", "secret")

		// When: loading the config
		conf, err := Load(path)

		// Then: file values, env values and defaults are all applied
		require.NoError(t, err)
		assert.Equal(t, "8000", conf.HTTPPort)
		assert.Equal(t, 30, conf.Game.RoundSeconds)
		assert.Equal(t, 500*time.Millisecond, conf.Game.DebounceQuiet)
		assert.Equal(t, "secret", conf.TMDB.ReadAccessToken)
		assert.Equal(t, "https://api.themoviedb.org/3", conf.TMDB.BaseURL)
		assert.Equal(t, 5, conf.Game.SuggestionLimit)
	})

	t.Run("Falls back to defaults when the file is missing", func(t *testing.T) {
		// Given: a path that does not exist
		path := filepath.Join(t.TempDir(), "missing.yml")

		// When: loading the config
		conf, err := Load(path)

		// Then: defaults are used
		require.NoError(t, err)
		assert.Equal(t, 20, conf.Game.RoundSeconds)
		assert.Equal(t, time.Second, conf.Game.TickInterval)
		assert.Equal(t, 2*time.Second, conf.Game.DebounceQuiet)
		assert.Equal(t, time.Hour, conf.Game.SessionTimeout)
		assert.Equal(t, time.Minute, conf.Game.ReapInterval)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})
}
