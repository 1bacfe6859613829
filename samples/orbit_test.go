package samples

import (
	"fmt"
	"math"
	"testing"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/kepler"
	"github.com/ella918/thejoker/quantity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbit_Elements(t *testing.T) {
	s := fixture(t)

	o, err := s.Orbit(1)
	require.NoError(t, err)

	assert.Equal(t, 20.0, o.P)
	assert.Equal(t, 0.1, o.Ecc)
	assert.InDelta(t, math.Pi/2, o.ArgPeri, 1e-12)
	assert.Equal(t, 0.2, o.M0)
	assert.Equal(t, 0.0, o.V0)
	assert.InDelta(t, math.Pi/2, o.Incl, 1e-12)
	assert.Zero(t, o.AscNode)

	// a_K = P K / 2pi sqrt(1 - e^2), with P in seconds and K in km/s.
	wantKm := 20 * 86400 * 2.0 / (2 * math.Pi) * math.Sqrt(1-0.01)
	assert.InDelta(t, wantKm/149597870.7, o.A, 1e-15)
	assert.InDelta(t, 2.0, o.K(), 1e-9)

	t0, ok := o.T0()
	require.True(t, ok)
	assert.Equal(t, 58000.0, t0.MJD())
}

func TestOrbit_RadialVelocity(t *testing.T) {
	s := fixture(t)
	times := []float64{0, 3.3, 7.1, 12.9, 25}

	for i := range 4 {
		o, err := s.Orbit(i)
		require.NoError(t, err)

		got, err := o.RadialVelocity(times)
		require.NoError(t, err)

		p, _ := s.Get(KeyP)
		e, _ := s.Get(KeyEcc)
		omega, _ := s.GetName("omega")
		omegaRad, err := omega.ValuesIn(quantity.Radian)
		require.NoError(t, err)
		m0, _ := s.Get(KeyM0)
		k, _ := s.Get(KeyK)
		v0, _ := s.Get(KeyV0)

		want, err := kepler.RadialVelocity(times, p.At(i), k.At(i)/1000, e.At(i), omegaRad[i], m0.At(i))
		require.NoError(t, err)
		for j := range want {
			assert.InDelta(t, want[j]+v0.At(i), got[j], 1e-9)
		}
	}
}

func TestOrbit_CopiesAreIndependent(t *testing.T) {
	s := fixture(t)

	a, err := s.Orbit(0)
	require.NoError(t, err)
	b, err := s.Orbit(0)
	require.NoError(t, err)

	a.P = 999
	a.V0 = 999
	assert.Equal(t, 10.0, b.P)
	assert.Equal(t, -1.0, b.V0)

	again, err := s.Orbit(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.P)
}

func TestOrbit_Errors(t *testing.T) {
	s := fixture(t)

	_, err := s.Orbit(4)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	_, err = s.Orbit(-1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	partial := MustNew(
		WithValues(KeyP, quantity.New([]float64{10}, quantity.Day)),
		WithValues(KeyEcc, quantity.New([]float64{0}, quantity.Dimensionless)),
	)
	_, err = partial.Orbit(0)
	require.ErrorIs(t, err, errs.ErrMissingKey)

	mean, err := s.Mean()
	require.NoError(t, err)
	_, err = mean.Orbit(0)
	require.NoError(t, err)
	_, err = mean.Orbit(1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestOrbits(t *testing.T) {
	s := fixture(t)

	var periods []float64
	for o, err := range s.Orbits() {
		require.NoError(t, err)
		periods = append(periods, o.P)
	}
	require.Equal(t, []float64{10, 20, 30, 40}, periods)

	// Restartable, and stops when the consumer does.
	count := 0
	for range s.Orbits() {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)

	count = 0
	for range MustNew().Orbits() {
		count++
	}
	require.Zero(t, count)
}

func TestOrbits_ReportsFailure(t *testing.T) {
	partial := MustNew(
		WithValues(KeyP, quantity.New([]float64{10, 20, 30}, quantity.Day)),
		WithValues(KeyEcc, quantity.New([]float64{0, 0, 0}, quantity.Dimensionless)),
	)

	var errsSeen []error
	for o, err := range partial.Orbits() {
		require.Zero(t, o)
		errsSeen = append(errsSeen, err)
	}
	require.Len(t, errsSeen, 1)
	require.ErrorIs(t, errsSeen[0], errs.ErrMissingKey)
	require.ErrorContains(t, errsSeen[0], "sample 0")

	grid := func(v float64, u quantity.Unit) quantity.Quantity {
		q, err := quantity.NewWithShape([]float64{v, v, v, v}, []int{2, 2}, u)
		require.NoError(t, err)

		return q
	}
	matrix := MustNew(
		WithValues(KeyP, grid(10, quantity.Day)),
		WithValues(KeyEcc, grid(0.1, quantity.Dimensionless)),
		WithValues(KeyOmega, grid(0, quantity.Radian)),
		WithValues(KeyM0, grid(0, quantity.Radian)),
		WithValues(KeyK, grid(1, quantity.KmPerSec)),
		WithValues(KeyV0, grid(0, quantity.KmPerSec)),
	)
	n := 0
	for _, err := range matrix.Orbits() {
		require.ErrorIs(t, err, errs.ErrShapeMismatch)
		n++
	}
	require.Equal(t, 1, n)
}

// largeSamples builds n samples of every orbital key in non-canonical units,
// so every Orbit call converts.
func largeSamples(tb testing.TB, n int) *Samples {
	tb.Helper()

	column := func(f func(i int) float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = f(i)
		}

		return out
	}
	s, err := New(
		WithValues(KeyP, quantity.New(column(func(i int) float64 { return 1 + float64(i%100)/100 }), quantity.Year)),
		WithValues(KeyEcc, quantity.New(column(func(i int) float64 { return float64(i%90) / 100 }), quantity.Dimensionless)),
		WithValues(KeyOmega, quantity.New(column(func(i int) float64 { return float64(i % 360) }), quantity.Degree)),
		WithValues(KeyM0, quantity.New(column(func(i int) float64 { return float64(i % 180) }), quantity.Degree)),
		WithValues(KeyK, quantity.New(column(func(i int) float64 { return 1000 + float64(i%7) }), quantity.MetrePerSec)),
		WithValues(KeyV0, quantity.New(column(func(int) float64 { return -500 }), quantity.MetrePerSec)),
	)
	require.NoError(tb, err)

	return s
}

func TestOrbits_Large(t *testing.T) {
	const n = 50_000
	s := largeSamples(t, n)

	count := 0
	for o, err := range s.Orbits() {
		require.NoError(t, err)
		if count == 12_345 {
			assert.InDelta(t, (1+45.0/100)*365.25, o.P, 1e-9)
			assert.InDelta(t, float64(12_345%90)/100, o.Ecc, 1e-15)
			assert.InDelta(t, float64(12_345%360)*math.Pi/180, o.ArgPeri, 1e-12)
			assert.InDelta(t, -0.5, o.V0, 1e-12)
		}
		count++
	}
	require.Equal(t, n, count)
}

func BenchmarkOrbits(b *testing.B) {
	for _, n := range []int{10_000, 100_000} {
		s := largeSamples(b, n)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				for _, err := range s.Orbits() {
					if err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}
