package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = prev })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("AI_API_KEY", "")
	t.Setenv("IMAGE_API_KEY", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, NarrativeProviderOpenAI, cfg.NarrativeProvider)
	assert.Equal(t, "paged", cfg.NarrativeMode)
	assert.Equal(t, 2, cfg.ImageBatchWidth)
	assert.Equal(t, time.Second, cfg.ImageRateInterval)
	assert.Equal(t, "/images", cfg.ImagePublicBaseURL)
	assert.Equal(t, "/fallback", cfg.FallbackBaseURL)
	assert.Equal(t, 240*time.Second, cfg.IllustrationBudget)
	assert.Empty(t, cfg.AIAPIKey)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoadConfig_SecretFileWinsOverEnv(t *testing.T) {
	dir := withSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_api_key"), []byte("  from-file \n"), 0o600))
	t.Setenv("AI_API_KEY", "from-env")
	t.Setenv("IMAGE_API_KEY", "image-env")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AIAPIKey)
	assert.Equal(t, "image-env", cfg.ImageAPIKey)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	withSecretsDir(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("IMAGE_PROVIDER=sana\nIMAGE_BATCH_WIDTH=3\n"), 0o600))
	// godotenv не перезаписывает уже заданные переменные, поэтому очищаем их через t.Setenv
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("IMAGE_BATCH_WIDTH", "")
	os.Unsetenv("IMAGE_PROVIDER")
	os.Unsetenv("IMAGE_BATCH_WIDTH")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, ImageProviderSana, cfg.ImageProvider)
	assert.Equal(t, 3, cfg.ImageBatchWidth)
}

func TestLoadConfig_InvalidProvider(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("IMAGE_PROVIDER", "midjourney")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGE_PROVIDER")
}

func TestGetAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "http://a.com, http://b.com"}
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.GetAllowedOrigins())

	cfg.CORSAllowedOrigins = ""
	assert.Nil(t, cfg.GetAllowedOrigins())
}

func TestReadSecret(t *testing.T) {
	dir := withSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("   "), 0o600))

	_, err := ReadSecret("empty")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = ReadSecret("absent")
	assert.ErrorIs(t, err, os.ErrNotExist)

	for _, name := range []string{"", "../etc/passwd", "nested/key", ".hidden"} {
		_, err = ReadSecret(name)
		assert.Error(t, err, name)
	}
}

func TestLookupSecret_SourcePriority(t *testing.T) {
	dir := withSecretsDir(t)
	t.Setenv("AI_API_KEY", "from-env")
	t.Setenv("AI_API_KEY_FILE", "")

	value, source, err := LookupSecret("ai_api_key", "AI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
	assert.Equal(t, SecretSourceEnv, source)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_api_key"), []byte("from-docker\n"), 0o600))
	value, source, err = LookupSecret("ai_api_key", "AI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-docker", value)
	assert.Equal(t, SecretSourceDocker, source)

	custom := filepath.Join(t.TempDir(), "key.txt")
	require.NoError(t, os.WriteFile(custom, []byte(" from-file-env "), 0o600))
	t.Setenv("AI_API_KEY_FILE", custom)
	value, source, err = LookupSecret("ai_api_key", "AI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-file-env", value)
	assert.Equal(t, SecretSourceFileEnv, source)
}

func TestLookupSecret_NotFound(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("IMAGE_API_KEY", "")
	t.Setenv("IMAGE_API_KEY_FILE", "")

	_, _, err := LookupSecret("image_api_key", "IMAGE_API_KEY")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestLoadConfig_MissingSecretFileIsError(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("AI_API_KEY_FILE", filepath.Join(t.TempDir(), "nope.txt"))

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai_api_key")
}

func TestLoadConfig_BootstrapUserNeedsPassword(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("BOOTSTRAP_USERNAME", "operator")
	t.Setenv("BOOTSTRAP_PASSWORD", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOTSTRAP_USERNAME")

	t.Setenv("BOOTSTRAP_PASSWORD", "operator-pass")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "operator", cfg.BootstrapUsername)
	assert.Equal(t, "operator-pass", cfg.BootstrapPassword)
}

func TestHTTPWriteTimeout_ExceedsGenerationBudget(t *testing.T) {
	cfg := &Config{AITimeout: 90 * time.Second, IllustrationBudget: 240 * time.Second, ImageTimeout: 120 * time.Second}

	// Ответ должен успеть уйти после генерации текста и исчерпания бюджета иллюстраций
	assert.Greater(t, cfg.HTTPWriteTimeout(), cfg.AITimeout+cfg.IllustrationBudget)
}

func TestValidate_IllustrationBudget(t *testing.T) {
	withSecretsDir(t)
	t.Setenv("ILLUSTRATION_BUDGET", "0s")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ILLUSTRATION_BUDGET")
}
