package quantity

import (
	"fmt"
	"math"

	"github.com/ella918/thejoker/errs"
)

// Dimension is the physical dimension of a Unit.
type Dimension uint8

const (
	DimensionNone Dimension = iota
	DimensionTime
	DimensionAngle
	DimensionLength
	DimensionVelocity
)

func (d Dimension) String() string {
	switch d {
	case DimensionNone:
		return "dimensionless"
	case DimensionTime:
		return "time"
	case DimensionAngle:
		return "angle"
	case DimensionLength:
		return "length"
	case DimensionVelocity:
		return "velocity"
	default:
		return fmt.Sprintf("Dimension(%d)", uint8(d))
	}
}

// Unit is a named unit with a scale relative to its dimension's base unit
// (second, radian, metre, metre per second).
type Unit struct {
	name  string
	dim   Dimension
	scale float64
}

const (
	secondsPerDay = 86400.0
	daysPerYear   = 365.25
	metresPerAU   = 149597870700.0
	metresPerKm   = 1000.0
	radiansPerDeg = math.Pi / 180
)

// Supported units.
var (
	Dimensionless = Unit{name: "", dim: DimensionNone, scale: 1}
	Second        = Unit{name: "s", dim: DimensionTime, scale: 1}
	Day           = Unit{name: "d", dim: DimensionTime, scale: secondsPerDay}
	Year          = Unit{name: "yr", dim: DimensionTime, scale: daysPerYear * secondsPerDay}
	Radian        = Unit{name: "rad", dim: DimensionAngle, scale: 1}
	Degree        = Unit{name: "deg", dim: DimensionAngle, scale: radiansPerDeg}
	Metre         = Unit{name: "m", dim: DimensionLength, scale: 1}
	Kilometre     = Unit{name: "km", dim: DimensionLength, scale: metresPerKm}
	AU            = Unit{name: "AU", dim: DimensionLength, scale: metresPerAU}
	MetrePerSec   = Unit{name: "m / s", dim: DimensionVelocity, scale: 1}
	KmPerSec      = Unit{name: "km / s", dim: DimensionVelocity, scale: metresPerKm}
)

var unitsByName = map[string]Unit{
	"":              Dimensionless,
	"dimensionless": Dimensionless,
	"s":             Second,
	"d":             Day,
	"day":           Day,
	"yr":            Year,
	"rad":           Radian,
	"deg":           Degree,
	"m":             Metre,
	"km":            Kilometre,
	"AU":            AU,
	"au":            AU,
	"m / s":         MetrePerSec,
	"m/s":           MetrePerSec,
	"km / s":        KmPerSec,
	"km/s":          KmPerSec,
}

// ParseUnit returns the unit with the given name.
func ParseUnit(name string) (Unit, error) {
	u, ok := unitsByName[name]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q", name)
	}

	return u, nil
}

// String returns the canonical unit name, empty for dimensionless.
func (u Unit) String() string {
	return u.name
}

// Dimension returns the physical dimension of u.
func (u Unit) Dimension() Dimension {
	return u.dim
}

// Is reports whether u has dimension d.
func (u Unit) Is(d Dimension) bool {
	return u.dim == d
}

// Factor returns the multiplier converting values in u to values in to.
func (u Unit) Factor(to Unit) (float64, error) {
	if u.dim != to.dim {
		return 0, fmt.Errorf("%w: cannot convert %s (%s) to %s (%s)",
			errs.ErrIncompatibleUnit, u.name, u.dim, to.name, to.dim)
	}

	return u.scale / to.scale, nil
}
