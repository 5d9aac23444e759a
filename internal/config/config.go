// Package config loads client configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL matches the detection backend's development default.
	DefaultAPIBaseURL = "https://localhost:7024"

	DefaultPollInterval = 2 * time.Second
	DefaultPollAttempts = 20

	// Default map viewport (Kuala Lumpur area, like the sample plantations).
	DefaultMapLatitude  = 3.1390
	DefaultMapLongitude = 101.6869
	DefaultMapZoom      = 14
)

// Config holds everything the client needs to talk to the backend services
// and render maps.
type Config struct {
	// APIBaseURL is the root of the detection/auth/annotation backend.
	APIBaseURL string `yaml:"api_base_url"`

	// MapToken is the access token for the map tile provider.
	MapToken string `yaml:"map_token"`

	// TokenFile is the durable slot for the bearer token ("remember me").
	TokenFile string `yaml:"token_file"`

	// PollInterval is the delay between result poll attempts.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollAttempts is the poll attempt budget before giving up.
	PollAttempts int `yaml:"poll_attempts"`

	// Map viewport defaults used when detections carry no coordinates.
	MapLatitude  float64 `yaml:"map_latitude"`
	MapLongitude float64 `yaml:"map_longitude"`
	MapZoom      int     `yaml:"map_zoom"`
}

// UnmarshalYAML decodes the config, accepting poll_interval as a Go
// duration string ("2s", "500ms").
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type alias Config
	aux := struct {
		*alias
		PollInterval string `yaml:"poll_interval"`
	}{alias: (*alias)(c)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.PollInterval != "" {
		d, err := time.ParseDuration(aux.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
		c.PollInterval = d
	}
	return nil
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		APIBaseURL:   DefaultAPIBaseURL,
		TokenFile:    defaultTokenFile(),
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
		MapLatitude:  DefaultMapLatitude,
		MapLongitude: DefaultMapLongitude,
		MapZoom:      DefaultMapZoom,
	}
}

// Load builds a Config from defaults, an optional YAML file, and environment
// variables, in increasing order of precedence. An empty path skips the file;
// a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.PollAttempts < 1 {
		return nil, fmt.Errorf("poll_attempts must be at least 1, got %d", cfg.PollAttempts)
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("poll_interval must not be negative, got %s", cfg.PollInterval)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PALMA_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("PALMA_MAP_TOKEN"); v != "" {
		c.MapToken = v
	}
	if v := os.Getenv("PALMA_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv("PALMA_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("PALMA_POLL_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PollAttempts = n
		}
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		// Fall back to the working directory when no home is available.
		return ".palma_token"
	}
	return filepath.Join(dir, "palma", "token")
}
