package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Config holds the application configuration
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Engines  EnginesConfig  `toml:"engines"`
	Database DatabaseConfig `toml:"database"`
	Static   StaticConfig   `toml:"static"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	ListenAddr            string `toml:"listen_addr"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	PublicDemo            bool   `toml:"public_demo"` // enables permissive CORS
}

// EnginesConfig holds the external proving/verification engine endpoints
type EnginesConfig struct {
	ProverURL          string `toml:"prover_url"`
	VerifierURL        string `toml:"verifier_url"`
	PingTimeoutSeconds int    `toml:"ping_timeout_seconds"`
}

// DatabaseConfig holds database paths
type DatabaseConfig struct {
	ArtifactDBPath string `toml:"artifact_db_path"`
}

// StaticConfig holds the static asset root served on non-API paths
type StaticConfig struct {
	Root string `toml:"root"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ListenAddr:            ":8000",
			RequestTimeoutSeconds: 30,
			PublicDemo:            false,
		},
		Engines: EnginesConfig{
			ProverURL:          "http://127.0.0.1:9100",
			VerifierURL:        "http://127.0.0.1:9200",
			PingTimeoutSeconds: 3,
		},
		Database: DatabaseConfig{
			ArtifactDBPath: "data/artifact_db",
		},
		Static: StaticConfig{
			Root: "web",
		},
	}
}

// RequestTimeout returns the per-request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.General.RequestTimeoutSeconds) * time.Second
}

// PingTimeout returns the engine health-ping timeout as a duration.
func (c Config) PingTimeout() time.Duration {
	return time.Duration(c.Engines.PingTimeoutSeconds) * time.Second
}

// LoadConfig reads from config.toml and returns Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	file, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}

	err = toml.Unmarshal(file, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	return cfg, nil
}

// Save writes the config to path in TOML format.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}
