// Package rvdata holds an immutable set of radial-velocity observations.
package rvdata

import (
	"fmt"
	"math"
	"slices"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/internal/options"
	"github.com/ella918/thejoker/quantity"
)

// Data is a read-only set of radial-velocity observations. It is safe to share
// between goroutines.
type Data struct {
	t       []float64 // days since tOffset
	tOffset float64   // BMJD (TCB)
	rv      []float64
	ivar    []float64
	unit    quantity.Unit

	offsetSet bool
}

// Option configures a Data under construction.
type Option = options.Option[*Data]

// WithTimeOffset sets the epoch (BMJD, TCB) that observation times are
// measured from. The default is the earliest observation.
func WithTimeOffset(bmjd float64) Option {
	return options.New(func(d *Data) error {
		if math.IsNaN(bmjd) || math.IsInf(bmjd, 0) {
			return fmt.Errorf("%w: time offset %v is not finite", errs.ErrInvalidData, bmjd)
		}
		d.tOffset = bmjd
		d.offsetSet = true

		return nil
	})
}

// New builds an observation set from BMJD times, velocities and inverse
// variances, all of equal non-zero length. Velocities and inverse variances
// are in unit and unit⁻² respectively. Inputs are copied.
func New(bmjd, rv, ivar []float64, unit quantity.Unit, opts ...Option) (*Data, error) {
	n := len(bmjd)
	if n == 0 {
		return nil, fmt.Errorf("%w: no observations", errs.ErrInvalidData)
	}
	if len(rv) != n || len(ivar) != n {
		return nil, fmt.Errorf("%w: length mismatch t=%d rv=%d ivar=%d", errs.ErrInvalidData, n, len(rv), len(ivar))
	}
	if !unit.Is(quantity.DimensionVelocity) {
		return nil, fmt.Errorf("%w: rv unit %q is not a velocity", errs.ErrIncompatibleUnit, unit)
	}

	for i := range n {
		if !finite(bmjd[i]) || !finite(rv[i]) {
			return nil, fmt.Errorf("%w: non-finite observation at index %d", errs.ErrInvalidData, i)
		}
		if !(ivar[i] > 0) || math.IsInf(ivar[i], 1) {
			return nil, fmt.Errorf("%w: ivar[%d] = %v", errs.ErrInvalidNoise, i, ivar[i])
		}
	}

	d := &Data{
		rv:   slices.Clone(rv),
		ivar: slices.Clone(ivar),
		unit: unit,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	if !d.offsetSet {
		d.tOffset = slices.Min(bmjd)
	}

	d.t = make([]float64, n)
	for i, ti := range bmjd {
		d.t[i] = ti - d.tOffset
	}

	return d, nil
}

// FromErrors is like New but takes 1σ uncertainties instead of inverse variances.
func FromErrors(bmjd, rv, rvErr []float64, unit quantity.Unit, opts ...Option) (*Data, error) {
	ivar := make([]float64, len(rvErr))
	for i, e := range rvErr {
		ivar[i] = 1 / (e * e)
	}

	return New(bmjd, rv, ivar, unit, opts...)
}

// Len returns the number of observations.
func (d *Data) Len() int {
	return len(d.t)
}

// T returns observation times in days relative to TOffset.
// The returned slice must not be modified.
func (d *Data) T() []float64 {
	return d.t
}

// TOffset returns the reference epoch (BMJD, TCB) of T.
func (d *Data) TOffset() float64 {
	return d.tOffset
}

// RV returns the observed velocities. The returned slice must not be modified.
func (d *Data) RV() []float64 {
	return d.rv
}

// IVar0 returns the measurement inverse variances. The returned slice must not be modified.
func (d *Data) IVar0() []float64 {
	return d.ivar
}

// Unit returns the velocity unit of RV.
func (d *Data) Unit() quantity.Unit {
	return d.unit
}

// IVar returns the effective inverse variances for jitter log-variance s:
//
//	ivar_eff = ivar / (1 + exp(s)·ivar)
//
// s = -Inf means no jitter. Returns errs.ErrInvalidNoise if any effective
// inverse variance is not strictly positive.
func (d *Data) IVar(s float64) ([]float64, error) {
	if math.IsNaN(s) || math.IsInf(s, 1) {
		return nil, fmt.Errorf("%w: jitter log-variance %v", errs.ErrInvalidNoise, s)
	}

	out := make([]float64, len(d.ivar))
	if math.IsInf(s, -1) {
		copy(out, d.ivar)
		return out, nil
	}

	jitterVar := math.Exp(s)
	for i, iv := range d.ivar {
		out[i] = iv / (1 + jitterVar*iv)
		if !(out[i] > 0) {
			return nil, fmt.Errorf("%w: effective ivar[%d] = %v for s = %v", errs.ErrInvalidNoise, i, out[i], s)
		}
	}

	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
