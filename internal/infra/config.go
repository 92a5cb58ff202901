package infra

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// Loader loads ttrun configuration from TOML files.
type Loader struct {
	globalConfDir string // Path to global config directory (e.g., ~/.config/ttrun)
}

func NewLoader() *Loader {
	return &Loader{globalConfDir: defaultGlobalConfigDir()}
}

// NewLoaderWithGlobalDir creates a Loader with a custom global config
// directory.
func NewLoaderWithGlobalDir(globalConfDir string) *Loader {
	return &Loader{globalConfDir: globalConfDir}
}

func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "ttrun")
}

// GlobalConfigPath returns the path of the global config file, or "" when no
// home directory is known.
func (l *Loader) GlobalConfigPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// DefaultCredentialsPath is used when neither the config nor a flag names a
// credentials file.
func (l *Loader) DefaultCredentialsPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, "credentials.yaml")
}

// Load layers defaults, the global config file and then path (if non-empty).
// Later sources only override the keys they set. A missing global file is
// fine; a missing explicit file is an error.
func (l *Loader) Load(path string) (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if global := l.GlobalConfigPath(); global != "" {
		if err := decodeFile(global, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *domain.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func validateConfig(cfg *domain.Config) error {
	if cfg.Target.OS != "" {
		if _, err := domain.ParseOSFamily(cfg.Target.OS); err != nil {
			return fmt.Errorf("target.os: %w", err)
		}
	}
	switch cfg.Output.Format {
	case "", domain.FormatRaw, domain.FormatJSON, domain.FormatTUI:
	default:
		return fmt.Errorf("output.format: unknown format %q", cfg.Output.Format)
	}
	return nil
}
