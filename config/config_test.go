package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "serve", RunE: func(*cobra.Command, []string) error { return nil }}
	v := viper.New()
	require.NoError(t, BindFlags(cmd, v))
	require.NoError(t, cmd.ParseFlags(args))
	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "./botwerk.db", cfg.DBPath)
	assert.Equal(t, ResponderTemplate, cfg.Responder)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 20*time.Second, cfg.ReplyTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BOTWERK_PORT", "9000")
	t.Setenv("BOTWERK_DB_PATH", "/tmp/env.db")
	t.Setenv("BOTWERK_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := load(t, "--port", "9100", "--history-limit", "4")
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.HistoryLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestOpenAIKeyFallsBackToLegacyVariable(t *testing.T) {
	t.Setenv("OPENAI_KEY", "sk-legacy")
	cfg, err := load(t, "--responder", "OpenAI")
	require.NoError(t, err)
	assert.Equal(t, ResponderOpenAI, cfg.Responder)
	assert.Equal(t, "sk-legacy", cfg.OpenAIAPIKey)
}

func TestInvalidValues(t *testing.T) {
	_, err := load(t, "--responder", "magic")
	assert.Error(t, err)

	_, err = load(t, "--history-limit=-1")
	assert.Error(t, err)

	_, err = load(t, "--reply-timeout", "0s")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOTWERK_TEST_DOTENV=geladen\n"), 0o600))
	t.Setenv("BOTWERK_TEST_DOTENV", "")
	os.Unsetenv("BOTWERK_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "geladen", os.Getenv("BOTWERK_TEST_DOTENV"))
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	require.NoError(t, ConfigureLogging("debug"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Error(t, ConfigureLogging("loud"))
}
