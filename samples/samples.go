// Package samples stores batches of orbital parameter draws and derives
// orbits and summary statistics from them.
package samples

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ella918/thejoker/astrotime"
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/internal/options"
	"github.com/ella918/thejoker/kepler"
	"github.com/ella918/thejoker/quantity"
)

type slot struct {
	q   quantity.Quantity
	set bool
}

// Samples holds one quantity per orbital parameter, all with the same shape.
//
// The first quantity stored fixes the shape. Samples must not be modified
// concurrently; concurrent reads, including Orbit, are safe.
type Samples struct {
	slots [keyCount + 1]slot
	order []Key
	shape []int
	t0    *astrotime.Time

	templateOnce sync.Once
	template     kepler.Orbit
	templateErr  error
}

// Option configures a Samples under construction.
type Option = options.Option[*Samples]

// WithT0 sets the reference epoch of the orbital parameters.
func WithT0(t astrotime.Time) Option {
	return options.New(func(s *Samples) error {
		if t.IsZero() {
			return fmt.Errorf("reference epoch is unset")
		}
		s.t0 = &t

		return nil
	})
}

// WithValues stores q under key, as Set does.
func WithValues(key Key, q quantity.Quantity) Option {
	return options.New(func(s *Samples) error {
		return s.Set(key, q)
	})
}

// New returns a container with opts applied in order.
func New(opts ...Option) (*Samples, error) {
	s := &Samples{}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Samples {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return s
}

// Set stores q under key. q's unit must have the dimension the key requires
// and, after the first Set, the same shape as the values already stored.
func (s *Samples) Set(key Key, q quantity.Quantity) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidKey, key)
	}
	if dim := key.Dimension(); !q.Unit().Is(dim) {
		return fmt.Errorf("%w: %s needs a %s unit, got %q", errs.ErrIncompatibleUnit, key, dim, q.Unit())
	}
	if n := shapeSize(q.Shape()); n != q.Size() {
		return fmt.Errorf("%w: shape %v needs %d values, got %d", errs.ErrShapeMismatch, q.Shape(), n, q.Size())
	}
	if s.shape != nil && !slices.Equal(s.shape, q.Shape()) {
		return fmt.Errorf("%w: got %v, expected %v", errs.ErrShapeMismatch, q.Shape(), s.shape)
	}

	if s.shape == nil {
		s.shape = q.Shape()
	}
	if !s.slots[key].set {
		s.order = append(s.order, key)
	}
	// Quantity is immutable, so storing it shares no state with the caller.
	s.slots[key] = slot{q: q, set: true}

	return nil
}

// shapeSize is the number of values an array of shape holds.
func shapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

// SetName is like Set with the key given by name.
func (s *Samples) SetName(name string, q quantity.Quantity) error {
	key, err := ParseKey(name)
	if err != nil {
		return err
	}

	return s.Set(key, q)
}

// Get returns the values stored under key.
func (s *Samples) Get(key Key) (quantity.Quantity, bool) {
	if !key.Valid() || !s.slots[key].set {
		return quantity.Quantity{}, false
	}

	return s.slots[key].q, true
}

// GetName is like Get with the key given by name.
func (s *Samples) GetName(name string) (quantity.Quantity, error) {
	key, err := ParseKey(name)
	if err != nil {
		return quantity.Quantity{}, err
	}
	q, ok := s.Get(key)
	if !ok {
		return quantity.Quantity{}, fmt.Errorf("%w: %s", errs.ErrMissingKey, key)
	}

	return q, nil
}

// Keys returns the stored keys in insertion order.
func (s *Samples) Keys() []Key {
	return slices.Clone(s.order)
}

// T0 returns the reference epoch, or false when none was set.
func (s *Samples) T0() (astrotime.Time, bool) {
	if s.t0 == nil {
		return astrotime.Time{}, false
	}

	return *s.t0, true
}

// Size returns the number of values stored per key.
func (s *Samples) Size() (int, error) {
	if s.shape == nil {
		return 0, errs.ErrNoSamplesStored
	}

	size := 1
	for _, d := range s.shape {
		size *= d
	}

	return size, nil
}

// Shape returns the shape shared by every stored quantity.
func (s *Samples) Shape() ([]int, error) {
	if s.shape == nil {
		return nil, errs.ErrNoSamplesStored
	}

	return slices.Clone(s.shape), nil
}

// Slice returns a new container holding samples [i, j) of every key. The
// result shares no data or cached state with s.
func (s *Samples) Slice(i, j int) (*Samples, error) {
	return s.derive(func(q quantity.Quantity) (quantity.Quantity, error) {
		n := q.Len()
		if q.IsScalar() || i < 0 || j < i || j > n {
			return quantity.Quantity{}, fmt.Errorf("%w: [%d:%d] for shape %v", errs.ErrIndexOutOfRange, i, j, q.Shape())
		}

		return q.Slice(i, j)
	})
}

// At returns a new container holding sample i of every key, with the leading
// axis removed.
func (s *Samples) At(i int) (*Samples, error) {
	return s.derive(func(q quantity.Quantity) (quantity.Quantity, error) {
		if q.IsScalar() || i < 0 || i >= q.Len() {
			return quantity.Quantity{}, fmt.Errorf("%w: index %d for shape %v", errs.ErrIndexOutOfRange, i, q.Shape())
		}

		return q.Row(i)
	})
}

// derive builds a new container by applying fn to every stored quantity in
// insertion order. The reference epoch is carried over.
func (s *Samples) derive(fn func(quantity.Quantity) (quantity.Quantity, error)) (*Samples, error) {
	out := &Samples{}
	if s.t0 != nil {
		t0 := *s.t0
		out.t0 = &t0
	}

	for _, key := range s.order {
		q, err := fn(s.slots[key].q)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if err := out.Set(key, q); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// String renders s as "<Samples in [P,e], 10 samples>".
func (s *Samples) String() string {
	names := make([]string, len(s.order))
	for i, k := range s.order {
		names[i] = k.String()
	}
	size, _ := s.Size()

	return fmt.Sprintf("<Samples in [%s], %d samples>", strings.Join(names, ","), size)
}
