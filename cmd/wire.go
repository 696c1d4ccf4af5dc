package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/tgsession/internal/adapters/backend/httpapi"
	"github.com/bnema/tgsession/internal/adapters/host/webapp"
	tomlrepo "github.com/bnema/tgsession/internal/adapters/repo/toml"
	chainstore "github.com/bnema/tgsession/internal/adapters/secrets/chain"
	filestore "github.com/bnema/tgsession/internal/adapters/secrets/file"
	"github.com/bnema/tgsession/internal/application"
	"github.com/bnema/tgsession/internal/config"
	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

const (
	configDirEnv = "TGS_CONFIG_DIR"
	logFlags     = log.LstdFlags | log.Lmicroseconds
)

type app struct {
	config      config.Config
	profiles    ports.ProfileRepository
	secretStore ports.SecretStore
	httpClient  *http.Client
	now         func() time.Time
	logger      *log.Logger
	logFile     io.Closer
}

func wireApp() (*app, error) {
	v, cfg, err := config.Load(config.LoadOptions{Dir: os.Getenv(configDirEnv)})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	secrets, err := newSecretStore(cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	return &app{
		config:      cfg,
		profiles:    repo,
		secretStore: secrets,
		httpClient:  http.DefaultClient,
		now:         time.Now,
		logger:      log.New(io.Discard, "", 0),
	}, nil
}

func newSecretStore(cfg config.Secrets) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsBackendPass:
		return chainstore.NewPassFirstWithFileFallback(cfg.Dir)
	case config.SecretsBackendFile, "":
		return filestore.NewStore(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.Backend)
	}
}

// openLogger sends logs to stderr when verbose, otherwise to the log file
// so the interactive page keeps the terminal.
func (a *app) openLogger(stderr io.Writer, verbose bool) error {
	if verbose {
		a.logger = log.New(stderr, "tgs ", logFlags)
		return nil
	}

	path := a.config.Log.Path
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = file
	a.logger = log.New(file, "tgs ", logFlags)
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) backend() (httpapi.Client, error) {
	api, err := a.config.Backend.API()
	if err != nil {
		return httpapi.Client{}, err
	}
	return httpapi.Client{
		API:            api,
		HTTPClient:     a.httpClient,
		RequestTimeout: a.config.Backend.RequestTimeout,
		Now:            a.now,
	}, nil
}

func (a *app) resolveInitData(ctx context.Context, profile domain.HostProfile) (string, error) {
	if strings.TrimSpace(profile.InitData) != "" {
		return profile.InitData, nil
	}

	initData, err := a.secretStore.Get(ctx, profile.InitDataRef)
	if err != nil {
		return "", fmt.Errorf("load init data for profile %s: %w", profile.Name, err)
	}
	return initData, nil
}

// loadHost builds the replayed host bridge for a stored profile.
func (a *app) loadHost(ctx context.Context, name string) (domain.HostProfile, *webapp.WebApp, error) {
	profile, err := a.profiles.GetByName(ctx, name)
	if err != nil {
		return domain.HostProfile{}, nil, err
	}

	initData, err := a.resolveInitData(ctx, profile)
	if err != nil {
		return domain.HostProfile{}, nil, err
	}

	host, err := webapp.New(webapp.Config{InitData: initData, Platform: profile.Platform, Logger: a.logger})
	if err != nil {
		return domain.HostProfile{}, nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	return profile, host, nil
}

type hostSession struct {
	profile domain.HostProfile
	host    *webapp.WebApp
	client  *application.SessionClient
}

func (a *app) openSession(ctx context.Context, name string, surface ports.Surface, lifecycle ports.Lifecycle) (*hostSession, error) {
	backend, err := a.backend()
	if err != nil {
		return nil, err
	}

	profile, host, err := a.loadHost(ctx, name)
	if err != nil {
		return nil, err
	}

	client := application.NewSessionClient(application.SessionClientOptions{
		Host:              host,
		Backend:           backend,
		Surface:           surface,
		Lifecycle:         lifecycle,
		Logger:            a.logger,
		HeartbeatInterval: a.config.Heartbeat.Interval,
	})

	return &hostSession{profile: profile, host: host, client: client}, nil
}
