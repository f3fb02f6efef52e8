// Package settings holds process-level settings: where to listen, which
// store backend to use and where the inference endpoints live.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const appName = "emotion-panel"

type Settings struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Inference InferenceConfig `toml:"inference"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type StoreConfig struct {
	Backend   string `toml:"backend"` // file, sqlite, postgres, redis
	Path      string `toml:"path"`
	DSN       string `toml:"dsn"`
	RedisAddr string `toml:"redis_addr"`
	Namespace string `toml:"namespace"`
}

type InferenceConfig struct {
	GeminiURL      string `toml:"gemini_url"`
	OpenAIURL      string `toml:"openai_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout is the per-request inference timeout.
func (c InferenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns the settings used when no file is present.
func Defaults() *Settings {
	return &Settings{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			Backend:   "file",
			Path:      filepath.Join(xdg.DataHome, appName, "state.json"),
			Namespace: "emotion-panel",
		},
		Inference: InferenceConfig{
			GeminiURL:      "https://generativelanguage.googleapis.com",
			TimeoutSeconds: 30,
		},
	}
}

// DefaultPath is the settings file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the selected backend has what it needs.
func (s *Settings) Validate() error {
	switch s.Store.Backend {
	case "", "file", "sqlite":
		if s.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %q backend", s.Store.Backend)
		}
	case "postgres":
		if s.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres backend")
		}
	case "redis":
		if s.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", s.Store.Backend)
	}
	if s.Inference.TimeoutSeconds <= 0 {
		return fmt.Errorf("inference.timeout_seconds must be positive")
	}
	return nil
}

// Save writes s to path as TOML, creating parent directories.
func (s *Settings) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
