// Package astrotime represents barycentric epochs as Modified Julian Dates in
// the TCB or TDB time scale.
package astrotime

import (
	"fmt"
	"math"
)

// Scale identifies a relativistic time scale.
type Scale uint8

const (
	// TCB is Barycentric Coordinate Time.
	TCB Scale = iota + 1
	// TDB is Barycentric Dynamical Time.
	TDB
)

func (s Scale) String() string {
	switch s {
	case TCB:
		return "tcb"
	case TDB:
		return "tdb"
	default:
		return fmt.Sprintf("Scale(%d)", uint8(s))
	}
}

// IAU 2006 Resolution B3 constants relating TDB to TCB.
const (
	lB        = 1.550519768e-8
	t0JD      = 2443144.5003725
	tdb0Sec   = -6.55e-5
	mjdOffset = 2400000.5
	secPerDay = 86400.0
	tdb0Days  = tdb0Sec / secPerDay
	t0MJD     = t0JD - mjdOffset
)

// Time is an epoch expressed as an MJD in a given scale. The zero value is invalid.
type Time struct {
	mjd   float64
	scale Scale
}

// New returns the epoch mjd in scale.
func New(mjd float64, scale Scale) (Time, error) {
	if scale != TCB && scale != TDB {
		return Time{}, fmt.Errorf("unknown time scale %s", scale)
	}
	if math.IsNaN(mjd) || math.IsInf(mjd, 0) {
		return Time{}, fmt.Errorf("non-finite epoch %v", mjd)
	}

	return Time{mjd: mjd, scale: scale}, nil
}

// MustNew is like New but panics on error.
func MustNew(mjd float64, scale Scale) Time {
	t, err := New(mjd, scale)
	if err != nil {
		panic(err)
	}

	return t
}

// MJD returns the Modified Julian Date in the epoch's own scale.
func (t Time) MJD() float64 {
	return t.mjd
}

// Scale returns the epoch's time scale.
func (t Time) Scale() Scale {
	return t.scale
}

// IsZero reports whether t is the zero value.
func (t Time) IsZero() bool {
	return t.scale == 0
}

// TCB returns the same instant in TCB.
func (t Time) TCB() Time {
	if t.scale != TDB {
		return t
	}

	return Time{mjd: (t.mjd - lB*t0MJD - tdb0Days) / (1 - lB), scale: TCB}
}

// TDB returns the same instant in TDB.
func (t Time) TDB() Time {
	if t.scale != TCB {
		return t
	}

	return Time{mjd: t.mjd - lB*(t.mjd-t0MJD) + tdb0Days, scale: TDB}
}

// Equal reports whether t and u are the same instant to within tol days.
func (t Time) Equal(u Time, tol float64) bool {
	return math.Abs(t.TCB().mjd-u.TCB().mjd) <= tol
}

func (t Time) String() string {
	return fmt.Sprintf("%.9f MJD (%s)", t.mjd, t.scale)
}
