// Package kepler evaluates radial velocities of a body on a Keplerian orbit.
package kepler

import (
	"fmt"
	"math"

	"github.com/ella918/thejoker/errs"
)

const (
	anomalyTolerance = 1e-10
	maxNewtonSteps   = 64
)

// EccentricAnomaly solves Kepler's equation M = E - e·sin(E) for E by Newton iteration.
func EccentricAnomaly(meanAnomaly, ecc float64) (float64, error) {
	m := math.Remainder(meanAnomaly, 2*math.Pi)
	if ecc == 0 {
		return m, nil
	}

	// Danby's starting guess converges for all e < 1.
	sign := 1.0
	if math.Sin(m) < 0 {
		sign = -1
	}
	ea := m + 0.85*ecc*sign

	for range maxNewtonSteps {
		sinE, cosE := math.Sincos(ea)
		step := (ea - ecc*sinE - m) / (1 - ecc*cosE)
		ea -= step
		if math.Abs(step) < anomalyTolerance {
			return ea, nil
		}
	}

	return 0, fmt.Errorf("kepler equation did not converge for M=%g e=%g", meanAnomaly, ecc)
}

// TrueAnomaly converts an eccentric anomaly to the true anomaly.
func TrueAnomaly(eccAnomaly, ecc float64) float64 {
	sinHalf, cosHalf := math.Sincos(eccAnomaly / 2)

	return 2 * math.Atan2(math.Sqrt(1+ecc)*sinHalf, math.Sqrt(1-ecc)*cosHalf)
}

// RadialVelocity evaluates rv = K·(cos(ω+f) + e·cos ω) at each time t (days),
// where the mean anomaly is M = 2πt/P − phi0.
//
// Returns errs.ErrNonPhysical when P ≤ 0, e is outside [0, 1) or any input is not finite.
func RadialVelocity(t []float64, period, k, ecc, omega, phi0 float64) ([]float64, error) {
	if err := validate(period, ecc, k, omega, phi0); err != nil {
		return nil, err
	}

	out := make([]float64, len(t))
	eCosW := ecc * math.Cos(omega)
	for i, ti := range t {
		if !finite(ti) {
			return nil, fmt.Errorf("%w: time[%d] = %v", errs.ErrNonPhysical, i, ti)
		}

		ea, err := EccentricAnomaly(2*math.Pi*ti/period-phi0, ecc)
		if err != nil {
			return nil, err
		}
		out[i] = k * (math.Cos(omega+TrueAnomaly(ea, ecc)) + eCosW)
	}

	return out, nil
}

func validate(period, ecc float64, rest ...float64) error {
	if !finite(period) || period <= 0 {
		return fmt.Errorf("%w: period %v must be positive", errs.ErrNonPhysical, period)
	}
	if !finite(ecc) || ecc < 0 || ecc >= 1 {
		return fmt.Errorf("%w: eccentricity %v outside [0, 1)", errs.ErrNonPhysical, ecc)
	}
	for _, v := range rest {
		if !finite(v) {
			return fmt.Errorf("%w: non-finite element %v", errs.ErrNonPhysical, v)
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
