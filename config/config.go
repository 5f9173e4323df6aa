// Package config loads runtime settings for training, prediction and the HTTP server.
//
// Values are resolved in this order, later sources winning:
// built-in defaults, an optional YAML file, a .env file in the working
// directory, process environment variables. Command line flags in cmd/*
// are applied on top by the caller.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvDataPath     = "HOUSEPRICE_DATA_PATH"
	EnvArtifactsDir = "HOUSEPRICE_ARTIFACTS_DIR"
	EnvSeed         = "HOUSEPRICE_SEED"
	EnvTestSize     = "HOUSEPRICE_TEST_SIZE"
	EnvLogLevel     = "HOUSEPRICE_LOG_LEVEL"
	EnvPlotPath     = "HOUSEPRICE_PLOT_PATH"
	EnvListenAddr   = "HOUSEPRICE_LISTEN_ADDR"

	EnvHereAPIKey    = "HERE_API_KEY"
	EnvHereMapsJSKey = "HERE_MAPS_JS_KEY"
)

// Config holds all application configuration.
type Config struct {
	// path of the household CSV used for training
	DataPath string `yaml:"dataPath"`

	// directory holding the four artifact files
	ArtifactsDir string `yaml:"artifactsDir"`

	// seed for synthetic coordinates and the train/test split
	Seed int64 `yaml:"seed"`

	// held-out fraction, in (0, 1)
	TestSize float64 `yaml:"testSize"`

	// debug, info, warn or error
	LogLevel string `yaml:"logLevel"`

	// optional predicted-vs-actual plot written after training (.png or .svg)
	PlotPath string `yaml:"plotPath,omitempty"`

	// address for cmd/server
	ListenAddr string `yaml:"listenAddr"`

	// HERE geocoding API key; /api/geocode answers 500 without it
	HereAPIKey string `yaml:"hereApiKey,omitempty"`

	// HERE Maps JavaScript key, only reported by /health
	HereMapsJSKey string `yaml:"hereMapsJsKey,omitempty"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataPath:     "Data/household.csv",
		ArtifactsDir: "artifacts",
		Seed:         42,
		TestSize:     0.2,
		LogLevel:     "info",
		ListenAddr:   ":5000",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), .env and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to read .env")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return c.UnmarshalYAMLBytes(buf)
}

// UnmarshalYAMLBytes overlays the fields present in buf onto c.
func (c *Config) UnmarshalYAMLBytes(buf []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "invalid config file")
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvDataPath); ok {
		c.DataPath = v
	}
	if v, ok := lookup(EnvArtifactsDir); ok {
		c.ArtifactsDir = v
	}
	if v, ok := lookup(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.NewValidationError(EnvSeed, "must be an integer", v)
		}
		c.Seed = seed
	}
	if v, ok := lookup(EnvTestSize); ok {
		ts, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError(EnvTestSize, "must be a number", v)
		}
		c.TestSize = ts
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPlotPath); ok {
		c.PlotPath = v
	}
	if v, ok := lookup(EnvListenAddr); ok {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvHereAPIKey); ok {
		c.HereAPIKey = v
	}
	if v, ok := lookup(EnvHereMapsJSKey); ok {
		c.HereMapsJSKey = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("logLevel", "must be one of debug, info, warn, error", c.LogLevel)
	}
	if !(c.TestSize > 0 && c.TestSize < 1) {
		return errors.NewValidationError("testSize", "must be in the open interval (0, 1)", c.TestSize)
	}
	if c.ArtifactsDir == "" {
		return errors.NewValidationError("artifactsDir", "must not be empty", c.ArtifactsDir)
	}
	if c.PlotPath != "" {
		ext := strings.ToLower(c.PlotPath)
		if !strings.HasSuffix(ext, ".png") && !strings.HasSuffix(ext, ".svg") {
			return errors.NewValidationError("plotPath", "must end in .png or .svg", c.PlotPath)
		}
	}
	return nil
}
