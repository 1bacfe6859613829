package likelihood

import (
	"fmt"
	"math"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/kepler"
	"github.com/ella918/thejoker/rvdata"
	"gonum.org/v1/gonum/mat"
)

// DesignMatrix builds the (1+nTrend) × nObs design matrix for the nonlinear
// parameters p = (P, phi0, ecc, omega[, s]). Only the first four entries are used.
//
// Row 0 is the unit-amplitude radial velocity with the phase shifted so phi0
// refers to the data's time offset. The remaining rows are t^0, t^1, ... of
// the observation times.
func DesignMatrix(p []float64, data *rvdata.Data, opts ...Option) (*mat.Dense, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return designMatrix(cfg, p, data)
}

func designMatrix(cfg *Config, p []float64, data *rvdata.Data) (*mat.Dense, error) {
	if len(p) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 values, got %d", errs.ErrInvalidParameters, len(p))
	}
	if data == nil || data.Len() == 0 {
		return nil, fmt.Errorf("%w: no observations", errs.ErrInvalidData)
	}

	period, phi0, ecc, omega := p[0], p[1], p[2], p[3]
	t := data.T()

	phase := phi0 - 2*math.Pi*floorMod(data.TOffset()/period, 1)
	zdot, err := kepler.RadialVelocity(t, period, 1, ecc, omega, phase)
	if err != nil {
		return nil, err
	}

	a := mat.NewDense(1+cfg.trendTerms, len(t), nil)
	a.SetRow(0, zdot)
	for j, tj := range t {
		pow := 1.0
		for k := range cfg.trendTerms {
			a.Set(1+k, j, pow)
			pow *= tj
		}
	}

	return a, nil
}

// floorMod returns x mod m with the sign of m.
func floorMod(x, m float64) float64 {
	return x - m*math.Floor(x/m)
}
