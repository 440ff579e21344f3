// Package config loads the minerush configuration file.
//
// Every field has a default, so a missing file is not an error. Relative
// paths in the file resolve against the data directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDirEnv overrides the data directory.
const DataDirEnv = "MINERUSH_DATA_DIR"

// FileName is the configuration file looked up in the data directory.
const FileName = "config.yaml"

// Config is the merged configuration.
type Config struct {
	// DataDir holds the database and config file. Not read from YAML.
	DataDir string `yaml:"-"`

	// Database is the local save database.
	Database string `yaml:"database"`

	// Catalog is an optional catalog file replacing the embedded one.
	Catalog string `yaml:"catalog"`

	// User is the remote account id. Empty runs local-only.
	User string `yaml:"user"`

	Remote   Remote   `yaml:"remote"`
	Timeouts Timeouts `yaml:"timeouts"`
	Sound    bool     `yaml:"sound"`
}

// Remote selects the remote save store.
type Remote struct {
	Driver string `yaml:"driver"` // "postgres" | "sqlite3" | "" (disabled)
	DSN    string `yaml:"dsn"`
}

// Timeouts bound collaborator calls.
type Timeouts struct {
	Identity time.Duration `yaml:"identity"`
	Remote   time.Duration `yaml:"remote"`
}

// Enabled reports whether a remote store is configured.
func (r Remote) Enabled() bool { return r.Driver != "" && r.DSN != "" }

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:  DataDir(),
		Database: "minerush.db",
		Timeouts: Timeouts{Identity: 5 * time.Second, Remote: 10 * time.Second},
		Sound:    true,
	}
}

// Load reads path, or the data directory's config.yaml when path is
// empty. A missing default file yields Default(); a missing explicit path
// is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected so a typo
// does not silently fall back to a default.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch c.Remote.Driver {
	case "", "postgres", "sqlite3":
	default:
		return fmt.Errorf("remote.driver %q: must be postgres or sqlite3", c.Remote.Driver)
	}
	if c.Remote.Driver != "" && c.Remote.DSN == "" {
		return errors.New("remote.dsn is required when remote.driver is set")
	}
	if c.Timeouts.Identity <= 0 || c.Timeouts.Remote <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.Database == "" {
		return errors.New("database must not be empty")
	}
	return nil
}

// DatabasePath returns Database resolved against DataDir.
func (c Config) DatabasePath() string {
	return c.resolve(c.Database)
}

// CatalogPath returns Catalog resolved against DataDir, or "" for the
// embedded catalog.
func (c Config) CatalogPath() string {
	if c.Catalog == "" {
		return ""
	}
	return c.resolve(c.Catalog)
}

func (c Config) resolve(p string) string {
	if p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// DataDir returns the platform data directory, or $MINERUSH_DATA_DIR.
func DataDir() string {
	if custom := os.Getenv(DataDirEnv); custom != "" {
		return custom
	}

	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, "minerush")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "minerush")
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "minerush")
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", "minerush")
		}
	}
	return "."
}

// EnsureDataDir creates the data directory if needed.
func (c Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}
