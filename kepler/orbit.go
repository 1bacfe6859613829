package kepler

import (
	"fmt"
	"math"

	"github.com/ella918/thejoker/astrotime"
	"github.com/ella918/thejoker/errs"
)

const (
	kmPerAU       = 149597870.7
	secondsPerDay = 86400.0
)

// Elements are the Keplerian elements of an orbit.
//
// P is in days, A in AU, and all angles in radians.
type Elements struct {
	P       float64 // period
	Ecc     float64 // eccentricity
	ArgPeri float64 // argument of pericenter, omega
	AscNode float64 // longitude of the ascending node, Omega
	Incl    float64 // inclination
	A       float64 // semi-major axis
	M0      float64 // phase at the reference epoch
}

// Row holds the per-sample values Apply writes into a copy of a template orbit.
type Row struct {
	P       float64 // days
	Ecc     float64
	ArgPeri float64 // radians
	M0      float64 // radians
	A       float64 // AU
	V0      float64 // km/s
}

// Orbit is a Keplerian orbit with a reference epoch and a systemic velocity.
//
// Orbit is a value type; copies share no mutable state.
type Orbit struct {
	Elements

	t0 *astrotime.Time
	// V0 is the systemic velocity in km/s added to RadialVelocity.
	V0 float64
}

// NewOrbit validates el and returns an orbit referenced to t0, which may be nil.
func NewOrbit(el Elements, t0 *astrotime.Time) (Orbit, error) {
	if err := validate(el.P, el.Ecc, el.ArgPeri, el.AscNode, el.Incl, el.A, el.M0); err != nil {
		return Orbit{}, err
	}
	if el.A < 0 {
		return Orbit{}, fmt.Errorf("%w: semi-major axis %v is negative", errs.ErrNonPhysical, el.A)
	}

	return Orbit{Elements: el, t0: cloneTime(t0)}, nil
}

// Apply returns an independent copy of o with the row's elements and systemic velocity.
//
// Node longitude, inclination and reference epoch are kept from o.
func (o Orbit) Apply(r Row) Orbit {
	out := o
	out.P = r.P
	out.Ecc = r.Ecc
	out.ArgPeri = r.ArgPeri
	out.M0 = r.M0
	out.A = r.A
	out.V0 = r.V0
	out.t0 = cloneTime(o.t0)

	return out
}

// T0 returns the reference epoch, or false when none was set.
func (o Orbit) T0() (astrotime.Time, bool) {
	if o.t0 == nil {
		return astrotime.Time{}, false
	}

	return *o.t0, true
}

// K returns the radial velocity semi-amplitude in km/s.
func (o Orbit) K() float64 {
	aKm := o.A * kmPerAU
	pSec := o.P * secondsPerDay

	return 2 * math.Pi * aKm * math.Sin(o.Incl) / (pSec * math.Sqrt(1-o.Ecc*o.Ecc))
}

// Validate reports whether the orbit's elements are physical.
func (o Orbit) Validate() error {
	_, err := NewOrbit(o.Elements, nil)
	return err
}

// RadialVelocity evaluates the line-of-sight velocity in km/s, including V0,
// at times t given in days relative to the reference epoch.
func (o Orbit) RadialVelocity(t []float64) ([]float64, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	rv, err := RadialVelocity(t, o.P, o.K(), o.Ecc, o.ArgPeri, o.M0)
	if err != nil {
		return nil, err
	}
	for i := range rv {
		rv[i] += o.V0
	}

	return rv, nil
}

func (o Orbit) String() string {
	return fmt.Sprintf("<Orbit P=%g d e=%g omega=%g rad a=%g AU M0=%g rad>", o.P, o.Ecc, o.ArgPeri, o.A, o.M0)
}

func cloneTime(t *astrotime.Time) *astrotime.Time {
	if t == nil {
		return nil
	}
	c := *t

	return &c
}
