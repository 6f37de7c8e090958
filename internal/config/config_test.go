package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "YOUTUBE_REGION", "INGEST_INTERVAL", "CONTINUOUS_MODE", "GEMINI_MODEL", "USE_MEMORY", "POSTGRES_DSN"} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "US", c.YouTubeRegion)
	assert.Equal(t, time.Hour, c.IngestInterval)
	assert.False(t, c.ContinuousMode)
	assert.Equal(t, "gemini-2.0-flash-exp", c.GeminiModel)
	assert.Error(t, c.Validate(), "postgres dsn required without USE_MEMORY")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("YOUTUBE_REGION", "br")
	t.Setenv("CONTINUOUS_MODE", "true")
	t.Setenv("INGEST_INTERVAL", "90")
	t.Setenv("USE_MEMORY", "1")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	c := FromEnv()
	assert.Equal(t, "BR", c.YouTubeRegion)
	assert.True(t, c.ContinuousMode)
	assert.Equal(t, 90*time.Second, c.IngestInterval)
	assert.Equal(t, "legacy-key", c.GeminiAPIKey)
	assert.NoError(t, c.Validate())
}

func TestGetters_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "ten")
	t.Setenv("X_DUR", "soon")

	assert.True(t, Bool("X_BOOL", true))
	assert.Equal(t, 7, Int("X_INT", 7))
	assert.Equal(t, time.Minute, Duration("X_DUR", time.Minute))
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_A=from-file\nCFG_TEST_B=from-file\n"), 0o600))

	t.Setenv("CFG_TEST_A", "from-env")
	os.Unsetenv("CFG_TEST_B")
	t.Cleanup(func() { os.Unsetenv("CFG_TEST_B") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("CFG_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("CFG_TEST_B"))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestThumbnailStorageEnabled(t *testing.T) {
	c := Config{ThumbnailBucket: "b", ThumbnailAccessKey: "a"}
	assert.False(t, c.ThumbnailStorageEnabled())
	c.ThumbnailSecretKey = "s"
	assert.True(t, c.ThumbnailStorageEnabled())
}
