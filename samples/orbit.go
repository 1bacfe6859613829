package samples

import (
	"fmt"
	"iter"
	"math"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/kepler"
	"github.com/ella918/thejoker/quantity"
)

const (
	kmPerAU       = 149597870.7
	secondsPerDay = 86400.0
	daysPerYear   = 365.25
)

// orbitKeys are the keys Orbit reads.
var orbitKeys = []Key{KeyP, KeyEcc, KeyOmega, KeyM0, KeyK, KeyV0}

// templateOrbit returns the memoized template: a one-year circular edge-on
// orbit of 1 AU referenced to the container's epoch.
func (s *Samples) templateOrbit() (kepler.Orbit, error) {
	s.templateOnce.Do(func() {
		s.template, s.templateErr = kepler.NewOrbit(kepler.Elements{
			P:    daysPerYear,
			Incl: math.Pi / 2,
			A:    1,
		}, s.t0)
	})

	return s.template, s.templateErr
}

// Orbit returns the orbit described by sample index. The semi-major axis is
// the projected a·sin(i) implied by K, so the orbit reproduces the sampled
// semi-amplitude. A scalar container accepts index 0.
func (s *Samples) Orbit(index int) (kepler.Orbit, error) {
	var row [keyCount + 1]float64
	for _, key := range orbitKeys {
		q, ok := s.Get(key)
		if !ok {
			return kepler.Orbit{}, fmt.Errorf("%w: %s", errs.ErrMissingKey, key)
		}

		v, err := valueAt(q, index, canonicalUnit(key))
		if err != nil {
			return kepler.Orbit{}, fmt.Errorf("%s: %w", key, err)
		}
		row[key] = v
	}

	template, err := s.templateOrbit()
	if err != nil {
		return kepler.Orbit{}, err
	}

	period, ecc, k := row[KeyP], row[KeyEcc], row[KeyK]
	aKm := period * secondsPerDay * k / (2 * math.Pi) * math.Sqrt(1-ecc*ecc)

	return template.Apply(kepler.Row{
		P:       period,
		Ecc:     ecc,
		ArgPeri: row[KeyOmega],
		M0:      row[KeyM0],
		A:       aKm / kmPerAU,
		V0:      row[KeyV0],
	}), nil
}

// Orbits yields the orbit of every sample in order. If Orbit rejects a
// sample, the error is yielded with a zero Orbit and iteration ends.
func (s *Samples) Orbits() iter.Seq2[kepler.Orbit, error] {
	return func(yield func(kepler.Orbit, error) bool) {
		for i := range s.count() {
			o, err := s.Orbit(i)
			if err != nil {
				yield(kepler.Orbit{}, fmt.Errorf("sample %d: %w", i, err))
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

// count is the number of samples along the leading axis; a scalar
// container holds one.
func (s *Samples) count() int {
	switch {
	case s.shape == nil:
		return 0
	case len(s.shape) == 0:
		return 1
	default:
		return s.shape[0]
	}
}

// canonicalUnit is the unit Orbit works in for key.
func canonicalUnit(key Key) quantity.Unit {
	switch key.Dimension() {
	case quantity.DimensionTime:
		return quantity.Day
	case quantity.DimensionAngle:
		return quantity.Radian
	case quantity.DimensionVelocity:
		return quantity.KmPerSec
	default:
		return quantity.Dimensionless
	}
}

// valueAt reads sample index of q in unit without converting the whole array.
func valueAt(q quantity.Quantity, index int, unit quantity.Unit) (float64, error) {
	factor, err := q.Unit().Factor(unit)
	if err != nil {
		return 0, err
	}

	if q.IsScalar() {
		if index != 0 {
			return 0, fmt.Errorf("%w: index %d of a scalar", errs.ErrIndexOutOfRange, index)
		}

		return q.At(0) * factor, nil
	}

	if index < 0 || index >= q.Len() {
		return 0, fmt.Errorf("%w: index %d for length %d", errs.ErrIndexOutOfRange, index, q.Len())
	}
	if shape := q.Shape(); len(shape) != 1 {
		return 0, fmt.Errorf("%w: sample %d has shape %v", errs.ErrShapeMismatch, index, shape[1:])
	}

	return q.At(index) * factor, nil
}
