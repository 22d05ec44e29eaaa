package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/lookout"
)

const defaultConfigPath = "lookout.yaml"

// Backend names.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Config is the lookout.yaml file. String values may reference environment
// variables as ${VAR}.
type Config struct {
	LogsDir     string        `yaml:"logs_dir"`
	Compression string        `yaml:"compression"`
	WriterID    string        `yaml:"writer_id"`
	Metrics     []string      `yaml:"metrics"`
	Storage     StorageConfig `yaml:"storage"`
}

// StorageConfig selects and configures the blob store holding the logs.
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Insecure  bool   `yaml:"insecure"`

	// RateLimit caps requests per second against remote backends. Zero
	// disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

func defaultConfig() *Config {
	return &Config{
		LogsDir:     lookout.DefaultLogsDir,
		Compression: lookout.CompressionLZ4.String(),
		Storage: StorageConfig{
			Backend: BackendLocal,
		},
	}
}

// loadConfig reads path on top of the defaults. A missing file is only an
// error when it is not the default path.
func loadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.LogsDir == "" {
		cfg.LogsDir = lookout.DefaultLogsDir
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendLocal
	}
	return cfg, nil
}

// applyFlags overrides config values with non-empty global flags.
func (c *Config) applyFlags(cli *CLI) {
	if cli.LogsDir != "" {
		c.LogsDir = cli.LogsDir
	}
	if cli.Backend != "" {
		c.Storage.Backend = cli.Backend
	}
	if cli.Bucket != "" {
		c.Storage.Bucket = cli.Bucket
	}
	if cli.Prefix != "" {
		c.Storage.Prefix = cli.Prefix
	}
	if cli.Endpoint != "" {
		c.Storage.Endpoint = cli.Endpoint
	}
}

// Validate checks the storage settings and the compression name.
func (c *Config) Validate() error {
	if _, err := lookout.ParseCompression(c.Compression); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendLocal:
		if c.LogsDir == "" {
			return errors.New("logs_dir is required for the local backend")
		}
	case BackendS3:
		if c.Storage.Bucket == "" {
			return errors.New("bucket is required for the s3 backend")
		}
	case BackendMinio:
		if c.Storage.Bucket == "" {
			return errors.New("bucket is required for the minio backend")
		}
		if c.Storage.Endpoint == "" {
			return errors.New("endpoint is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want local, s3 or minio)", c.Storage.Backend)
	}

	if c.Storage.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	return nil
}
