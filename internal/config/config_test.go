package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/tgsession/internal/adapters/backend/httpapi"
	"github.com/bnema/tgsession/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearTGSEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TGS_BACKEND_BASE_URL",
		"TGS_BACKEND_REQUEST_TIMEOUT",
		"TGS_HEARTBEAT_INTERVAL",
		"TGS_LOG_PATH",
		"TGS_SECRETS_BACKEND",
	} {
		unsetEnv(t, key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()

	_, cfg, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.File)
	assert.Empty(t, cfg.Backend.BaseURL)
	assert.Equal(t, httpapi.DefaultLoginPath, cfg.Backend.LoginPath)
	assert.Equal(t, httpapi.DefaultUserDataUpdatePath, cfg.Backend.UserDataUpdatePath)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, domain.DefaultHeartbeatInterval, cfg.Heartbeat.Interval)
	assert.Equal(t, filepath.Join(dir, "profiles.toml"), cfg.Profiles.Path)
	assert.Equal(t, filepath.Join(dir, "secrets"), cfg.Secrets.Dir)
	assert.Equal(t, SecretsBackendFile, cfg.Secrets.Backend)
	assert.Equal(t, filepath.Join(dir, "debug.log"), cfg.Log.Path)

	_, err = cfg.Backend.API()
	assert.ErrorIs(t, err, ErrBackendNotConfigured)
}

func TestLoadReadsConfigFile(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[backend]
base_url = "https://example.test/app"
login_path = "login.php"

[heartbeat]
interval = "5s"
`), 0o600))

	_, cfg, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/app", cfg.Backend.BaseURL)
	assert.Equal(t, "login.php", cfg.Backend.LoginPath)
	assert.Equal(t, httpapi.DefaultHeartbeatPath, cfg.Backend.HeartbeatPath)
	assert.Equal(t, 5*time.Second, cfg.Heartbeat.Interval)

	api, err := cfg.Backend.API()
	require.NoError(t, err)
	assert.Equal(t, "login.php", api.LoginPath)
}

func TestLoadEnvOverridesFileAndEnvFile(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[backend]\nbase_url = \"https://file.test\"\n"), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TGS_BACKEND_BASE_URL=https://dotenv.test\nTGS_HEARTBEAT_INTERVAL=10s\n"), 0o600))
	t.Setenv("TGS_BACKEND_BASE_URL", "https://env.test")

	_, cfg, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{envPath}})
	require.NoError(t, err)

	assert.Equal(t, "https://env.test", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Heartbeat.Interval)
}

func TestLoadSkipsMissingEnvFiles(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()

	_, _, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{filepath.Join(dir, "missing.env")}})
	require.NoError(t, err)
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()
	t.Setenv("TGS_HEARTBEAT_INTERVAL", "0s")

	_, _, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.Error(t, err)
	assert.ErrorContains(t, err, KeyHeartbeatInterval)
}

func TestLoadSecretsBackend(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[secrets]\nbackend = \"pass\"\n"), 0o600))

	_, cfg, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, SecretsBackendPass, cfg.Secrets.Backend)

	t.Setenv("TGS_SECRETS_BACKEND", " FILE ")
	_, cfg, err = Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, SecretsBackendFile, cfg.Secrets.Backend)

	t.Setenv("TGS_SECRETS_BACKEND", "keychain")
	_, _, err = Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.Error(t, err)
	assert.ErrorContains(t, err, KeySecretsBackend)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[backend"), 0o600))

	_, _, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config file")
}

func TestWriteFileRoundTripsThroughLoad(t *testing.T) {
	clearTGSEnv(t)
	dir := t.TempDir()

	_, cfg, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)
	cfg.Backend.BaseURL = "https://example.test"
	cfg.Heartbeat.Interval = 45 * time.Second

	require.NoError(t, WriteFile(cfg, false))

	info, err := os.Stat(cfg.File)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteFile(cfg, false)
	assert.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteFile(cfg, true))

	_, reloaded, err := Load(LoadOptions{Dir: dir, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestEncodeUsesConfigKeys(t *testing.T) {
	t.Parallel()

	data, err := Encode(Config{
		Backend:   Backend{BaseURL: "https://example.test", RequestTimeout: time.Second},
		Heartbeat: Heartbeat{Interval: 30 * time.Second},
	})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "[backend]")
	assert.Regexp(t, `base_url = ['"]https://example\.test['"]`, out)
	assert.Regexp(t, `interval = ['"]30s['"]`, out)
}
