// Package fodconfig loads and validates the File Operations Daemon's TOML
// configuration, following the same load/normalize/validate pipeline the
// rest of the dynamo-fod stack uses for its own config documents.
package fodconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath is the environment variable FOM-compatible deployments use
// to point the daemon at a configuration file, per spec.md §6.
const EnvConfigPath = "DYNAMO_SERVER_CONFIG"

// EnvX509Proxy is the environment variable read (and saved/restored around
// staging) for the default grid proxy certificate.
const EnvX509Proxy = "X509_USER_PROXY"

// Daemon holds the file_operations.daemon.* keys from spec.md §6.
type Daemon struct {
	MaxParallelLinks int    `toml:"max_parallel_links"`
	TransferTimeout  int    `toml:"transfer_timeout"`
	Overwrite        bool   `toml:"overwrite"`
	X509Proxy        string `toml:"x509_proxy"`
	StagingX509Proxy string `toml:"staging_x509_proxy"`
	GFAL2Verbosity   string `toml:"gfal2_verbosity"`
	SchedulerPeriod  int    `toml:"scheduler_period_seconds"`
	CollectorPeriod  int    `toml:"collector_period_seconds"`
}

// DB holds the file_operations.manager.db.* keys.
type DB struct {
	DBParams string `toml:"db_params"`
}

// Logging controls where and how daemon logs are written.
type Logging struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Config is the root configuration document for the daemon.
type Config struct {
	User    string  `toml:"user"`
	Daemon  Daemon  `toml:"daemon"`
	DB      DB      `toml:"db"`
	Logging Logging `toml:"logging"`
}

// Default returns a Config populated with the daemon's built-in defaults.
func Default() Config {
	return Config{
		User: "",
		Daemon: Daemon{
			MaxParallelLinks: 8,
			TransferTimeout:  3600,
			Overwrite:        false,
			X509Proxy:        "",
			StagingX509Proxy: "",
			GFAL2Verbosity:   "normal",
			SchedulerPeriod:  30,
			CollectorPeriod:  5,
		},
		DB: DB{
			DBParams: "file:fod.db",
		},
		Logging: Logging{
			Level: "info",
			Path:  "",
		},
	}
}

// Load locates, parses, normalizes, and validates the daemon configuration.
// Resolution order for the path, matching spec.md §6: an explicit path
// argument, then DYNAMO_SERVER_CONFIG, then ./fod.toml in the working
// directory. A missing file at the resolved path is not an error: Load
// falls back to Default() so a bare daemon invocation works out of the box
// for local experimentation.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		_, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return path, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return path, true, nil
	}

	if envPath := strings.TrimSpace(os.Getenv(EnvConfigPath)); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true, nil
		}
	}

	projectPath, err := filepath.Abs("fod.toml")
	if err != nil {
		return "", false, err
	}
	if info, statErr := os.Stat(projectPath); statErr == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return projectPath, false, nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
