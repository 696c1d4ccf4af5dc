package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/tgsession/internal/adapters/backend/httpapi"
	"github.com/bnema/tgsession/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppDir     = "tgsession"
	configName = "config"
	configType = "toml"
	configFile = "config.toml"
	envPrefix  = "TGS"
	envFile    = ".env"
	fileMode   = 0o600
	dirMode    = 0o700

	defaultRequestTimeout = 30 * time.Second
)

const (
	KeyBaseURL            = "backend.base_url"
	KeyLoginPath          = "backend.login_path"
	KeyHeartbeatPath      = "backend.heartbeat_path"
	KeyUserDataPath       = "backend.user_data_path"
	KeyUserDataUpdatePath = "backend.user_data_update_path"
	KeyRequestTimeout     = "backend.request_timeout"
	KeyHeartbeatInterval  = "heartbeat.interval"
	KeyProfilesPath       = "profiles.path"
	KeySecretsDir         = "secrets.dir"
	KeySecretsBackend     = "secrets.backend"
	KeyLogPath            = "log.path"
)

const (
	SecretsBackendFile = "file"
	// SecretsBackendPass stores secrets with pass(1) and falls back to the
	// file store when pass fails.
	SecretsBackendPass = "pass"
)

var ErrBackendNotConfigured = errors.New("backend.base_url is not set (config.toml or TGS_BACKEND_BASE_URL)")

type Config struct {
	Dir       string
	File      string
	Backend   Backend
	Heartbeat Heartbeat
	Profiles  Profiles
	Secrets   Secrets
	Log       Log
}

type Backend struct {
	BaseURL            string
	LoginPath          string
	HeartbeatPath      string
	UserDataPath       string
	UserDataUpdatePath string
	RequestTimeout     time.Duration
}

// API returns the endpoint set, or ErrBackendNotConfigured without a base URL.
func (b Backend) API() (httpapi.API, error) {
	if strings.TrimSpace(b.BaseURL) == "" {
		return httpapi.API{}, ErrBackendNotConfigured
	}
	return httpapi.API{
		BaseURL:            b.BaseURL,
		LoginPath:          b.LoginPath,
		HeartbeatPath:      b.HeartbeatPath,
		UserDataPath:       b.UserDataPath,
		UserDataUpdatePath: b.UserDataUpdatePath,
	}, nil
}

type Heartbeat struct {
	Interval time.Duration
}

type Profiles struct {
	Path string
}

type Secrets struct {
	Backend string
	Dir     string
}

type Log struct {
	Path string
}

type LoadOptions struct {
	// Dir overrides the config directory. Empty means <user config dir>/tgsession.
	Dir string
	// EnvFiles are loaded before the environment is read. Missing files
	// are skipped. Empty means ./.env then <dir>/.env.
	EnvFiles []string
}

// DefaultDir is the tgsession directory under the user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, AppDir), nil
}

// Load reads config.toml, .env files and TGS_* variables, in increasing
// order of precedence over the defaults.
func Load(opts LoadOptions) (*viper.Viper, Config, error) {
	dir := opts.Dir
	if dir == "" {
		defaultDir, err := DefaultDir()
		if err != nil {
			return nil, Config{}, err
		}
		dir = defaultDir
	}

	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{envFile, filepath.Join(dir, envFile)}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, Config{}, err
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, dir)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Dir:  dir,
		File: filepath.Join(dir, configFile),
		Backend: Backend{
			BaseURL:            strings.TrimSpace(v.GetString(KeyBaseURL)),
			LoginPath:          v.GetString(KeyLoginPath),
			HeartbeatPath:      v.GetString(KeyHeartbeatPath),
			UserDataPath:       v.GetString(KeyUserDataPath),
			UserDataUpdatePath: v.GetString(KeyUserDataUpdatePath),
			RequestTimeout:     v.GetDuration(KeyRequestTimeout),
		},
		Heartbeat: Heartbeat{Interval: v.GetDuration(KeyHeartbeatInterval)},
		Profiles:  Profiles{Path: v.GetString(KeyProfilesPath)},
		Secrets: Secrets{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeySecretsBackend))),
			Dir:     v.GetString(KeySecretsDir),
		},
		Log: Log{Path: v.GetString(KeyLogPath)},
	}
	if err := cfg.validate(); err != nil {
		return nil, Config{}, err
	}

	return v, cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyLoginPath, httpapi.DefaultLoginPath)
	v.SetDefault(KeyHeartbeatPath, httpapi.DefaultHeartbeatPath)
	v.SetDefault(KeyUserDataPath, httpapi.DefaultUserDataPath)
	v.SetDefault(KeyUserDataUpdatePath, httpapi.DefaultUserDataUpdatePath)
	v.SetDefault(KeyRequestTimeout, defaultRequestTimeout.String())
	v.SetDefault(KeyHeartbeatInterval, domain.DefaultHeartbeatInterval.String())
	v.SetDefault(KeyProfilesPath, filepath.Join(dir, "profiles.toml"))
	v.SetDefault(KeySecretsBackend, SecretsBackendFile)
	v.SetDefault(KeySecretsDir, filepath.Join(dir, "secrets"))
	v.SetDefault(KeyLogPath, filepath.Join(dir, "debug.log"))
}

func (c Config) validate() error {
	if c.Heartbeat.Interval <= 0 {
		return fmt.Errorf("%s must be a positive duration", KeyHeartbeatInterval)
	}
	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be a positive duration", KeyRequestTimeout)
	}
	switch c.Secrets.Backend {
	case SecretsBackendFile, SecretsBackendPass:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", KeySecretsBackend, SecretsBackendFile, SecretsBackendPass, c.Secrets.Backend)
	}
	return nil
}

func loadEnvFiles(paths []string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}
