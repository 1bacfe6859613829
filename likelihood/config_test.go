package likelihood

import (
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultTrendTerms, cfg.TrendTerms())
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers())
	require.Same(t, slog.Default(), cfg.Logger())
}

func TestNewConfig_Options(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg, err := NewConfig(WithTrendTerms(0), WithWorkers(3), WithLogger(logger), nil)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.TrendTerms())
	require.Equal(t, 3, cfg.Workers())
	require.Same(t, logger, cfg.Logger())

	_, err = NewConfig(WithWorkers(0))
	require.ErrorContains(t, err, "option 0")
	_, err = NewConfig(WithTrendTerms(1), WithTrendTerms(-2))
	require.ErrorContains(t, err, "option 1")
}
