// Package config loads likelihood and storage settings from YAML files and
// environment variables.
//
// Values are resolved in order: defaults, then the file, then environment
// variables, and the result is validated.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/ella918/thejoker/format"
	"github.com/ella918/thejoker/likelihood"
	"github.com/ella918/thejoker/store"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvTrendTerms       = "THEJOKER_TREND_TERMS"
	EnvWorkers          = "THEJOKER_WORKERS"
	EnvStoreCompression = "THEJOKER_STORE_COMPRESSION"
	EnvStoreEncoding    = "THEJOKER_STORE_ENCODING"
)

// Config is the top-level configuration.
type Config struct {
	Likelihood LikelihoodConfig `yaml:"likelihood"`
	Store      StoreConfig      `yaml:"store"`
}

// LikelihoodConfig configures likelihood evaluation.
type LikelihoodConfig struct {
	// TrendTerms is the number of polynomial velocity-trend terms.
	TrendTerms int `yaml:"trend_terms"`
	// Workers bounds batch parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// StoreConfig configures sample storage.
type StoreConfig struct {
	Encoding    string       `yaml:"encoding"`
	Compression string       `yaml:"compression"`
	BigEndian   bool         `yaml:"big_endian"`
	Badger      BadgerConfig `yaml:"badger"`
}

// BadgerConfig locates an optional badger database.
type BadgerConfig struct {
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Likelihood: LikelihoodConfig{
			TrendTerms: likelihood.DefaultTrendTerms,
		},
		Store: StoreConfig{
			Encoding:    "gorilla",
			Compression: "zstd",
			Badger: BadgerConfig{
				SyncWrites: true,
			},
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. A missing file or empty path leaves
// the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("load config file: %w", err)
		default:
			if err := decode(data, &cfg); err != nil {
				return cfg, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. The
// environment is not consulted.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTrendTerms); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTrendTerms, err)
		}
		c.Likelihood.TrendTerms = n
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Likelihood.Workers = n
	}
	if v, ok := lookup(EnvStoreCompression); ok && v != "" {
		c.Store.Compression = v
	}
	if v, ok := lookup(EnvStoreEncoding); ok && v != "" {
		c.Store.Encoding = v
	}

	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Likelihood.TrendTerms < 0 {
		return fmt.Errorf("trend_terms must be >= 0")
	}
	if c.Likelihood.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if _, err := format.ParseEncoding(c.Store.Encoding); err != nil {
		return err
	}
	if _, err := format.ParseCompression(c.Store.Compression); err != nil {
		return err
	}

	return nil
}

// LikelihoodOptions returns the likelihood options the configuration selects.
func (c Config) LikelihoodOptions(logger *slog.Logger) []likelihood.Option {
	opts := []likelihood.Option{likelihood.WithTrendTerms(c.Likelihood.TrendTerms)}
	if c.Likelihood.Workers > 0 {
		opts = append(opts, likelihood.WithWorkers(c.Likelihood.Workers))
	}
	if logger != nil {
		opts = append(opts, likelihood.WithLogger(logger))
	}

	return opts
}

// StoreOptions returns the store options the configuration selects.
func (c Config) StoreOptions(logger *slog.Logger) ([]store.Option, error) {
	enc, err := format.ParseEncoding(c.Store.Encoding)
	if err != nil {
		return nil, err
	}
	comp, err := format.ParseCompression(c.Store.Compression)
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithEncoding(enc), store.WithCompression(comp)}
	if c.Store.BigEndian {
		opts = append(opts, store.WithBigEndian())
	}
	if logger != nil {
		opts = append(opts, store.WithLogger(logger))
	}

	return opts, nil
}

// OpenBadger opens the configured badger database with the configured
// store options.
func (c Config) OpenBadger(logger *slog.Logger) (*store.Badger, error) {
	opts, err := c.StoreOptions(logger)
	if err != nil {
		return nil, err
	}

	return store.OpenBadger(store.BadgerConfig{
		Path:       c.Store.Badger.Path,
		InMemory:   c.Store.Badger.InMemory,
		SyncWrites: c.Store.Badger.SyncWrites,
		Logger:     logger,
	}, opts...)
}
