package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Backend   backendSchema   `toml:"backend"`
	Heartbeat heartbeatSchema `toml:"heartbeat"`
	Profiles  profilesSchema  `toml:"profiles"`
	Secrets   secretsSchema   `toml:"secrets"`
	Log       logSchema       `toml:"log"`
}

type backendSchema struct {
	BaseURL            string `toml:"base_url"`
	LoginPath          string `toml:"login_path"`
	HeartbeatPath      string `toml:"heartbeat_path"`
	UserDataPath       string `toml:"user_data_path"`
	UserDataUpdatePath string `toml:"user_data_update_path"`
	RequestTimeout     string `toml:"request_timeout"`
}

type heartbeatSchema struct {
	Interval string `toml:"interval"`
}

type profilesSchema struct {
	Path string `toml:"path"`
}

type secretsSchema struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

type logSchema struct {
	Path string `toml:"path"`
}

func toFileSchema(cfg Config) fileSchema {
	return fileSchema{
		Backend: backendSchema{
			BaseURL:            cfg.Backend.BaseURL,
			LoginPath:          cfg.Backend.LoginPath,
			HeartbeatPath:      cfg.Backend.HeartbeatPath,
			UserDataPath:       cfg.Backend.UserDataPath,
			UserDataUpdatePath: cfg.Backend.UserDataUpdatePath,
			RequestTimeout:     cfg.Backend.RequestTimeout.String(),
		},
		Heartbeat: heartbeatSchema{Interval: cfg.Heartbeat.Interval.String()},
		Profiles:  profilesSchema{Path: cfg.Profiles.Path},
		Secrets:   secretsSchema{Backend: cfg.Secrets.Backend, Dir: cfg.Secrets.Dir},
		Log:       logSchema{Path: cfg.Log.Path},
	}
}

// Encode renders cfg in the config.toml layout.
func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toFileSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// WriteFile writes cfg to cfg.File. An existing file is kept unless force is set.
func WriteFile(cfg Config, force bool) error {
	if cfg.File == "" {
		return errors.New("config file path is empty")
	}

	if !force {
		if _, err := os.Stat(cfg.File); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, cfg.File)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(cfg.File, data, fileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
