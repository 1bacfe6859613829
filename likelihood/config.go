package likelihood

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/ella918/thejoker/internal/options"
)

// DefaultTrendTerms is the number of polynomial trend terms used when none is
// configured: a single constant velocity offset.
const DefaultTrendTerms = 1

// Config holds evaluator settings.
type Config struct {
	trendTerms int
	workers    int
	logger     *slog.Logger
}

// Option represents a functional option for configuring the likelihood evaluator.
type Option = options.Option[*Config]

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		trendTerms: DefaultTrendTerms,
		workers:    runtime.GOMAXPROCS(0),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TrendTerms returns the number of polynomial trend rows in the design matrix.
func (c *Config) TrendTerms() int {
	return c.trendTerms
}

// Workers returns the concurrency limit used by Batch.
func (c *Config) Workers() int {
	return c.workers
}

// Logger returns the configured logger, or slog.Default() when none was set.
func (c *Config) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}

	return c.logger
}

// WithTrendTerms sets the number of polynomial velocity trend terms
// (t^0, t^1, ...). Zero disables the trend entirely.
func WithTrendTerms(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("trend terms must be non-negative, got %d", n)
		}
		c.trendTerms = n

		return nil
	})
}

// WithWorkers bounds the number of concurrent evaluations in Batch.
func WithWorkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		c.workers = n

		return nil
	})
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}
