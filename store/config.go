package store

import (
	"fmt"
	"log/slog"

	"github.com/ella918/thejoker/compress"
	"github.com/ella918/thejoker/endian"
	"github.com/ella918/thejoker/format"
	"github.com/ella918/thejoker/internal/options"
)

// Config controls how datasets are encoded and compressed.
type Config struct {
	encoding    format.EncodingType
	compression format.CompressionType
	engine      endian.EndianEngine
	logger      *slog.Logger
}

// Option represents a functional option for configuring a store.
type Option = options.Option[*Config]

// NewConfig returns the default configuration (Gorilla values, Zstd
// compression, little-endian) with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		encoding:    format.TypeGorilla,
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Encoding returns the dataset value encoding.
func (c *Config) Encoding() format.EncodingType {
	return c.encoding
}

// Compression returns the payload compression.
func (c *Config) Compression() format.CompressionType {
	return c.compression
}

// Logger returns the configured logger, or slog.Default() when none was set.
func (c *Config) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}

	return c.logger
}

// WithEncoding sets the value encoding for datasets.
func WithEncoding(enc format.EncodingType) Option {
	return options.New(func(c *Config) error {
		if !enc.Valid() {
			return fmt.Errorf("invalid value encoding: %v", enc)
		}
		c.encoding = enc

		return nil
	})
}

// WithCompression sets the payload compression.
func WithCompression(comp format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(comp); err != nil {
			return err
		}
		c.compression = comp

		return nil
	})
}

// WithLittleEndian writes numbers little-endian. It is the default.
func WithLittleEndian() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian writes numbers big-endian.
func WithBigEndian() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}
