package samples

import (
	"fmt"

	"github.com/ella918/thejoker/astrotime"
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/store"
)

// T0Attr is the group attribute holding the reference epoch as a TCB MJD.
const T0Attr = "t0_bmjd"

// Persist writes one dataset per stored key into g, named after the key, and
// the reference epoch as a T0Attr attribute when set.
func (s *Samples) Persist(g store.Group) error {
	for _, key := range s.order {
		if err := store.WriteQuantity(g, key.String(), s.slots[key].q); err != nil {
			return fmt.Errorf("persist %s: %w", key, err)
		}
	}

	if s.t0 != nil {
		if err := g.SetAttr(T0Attr, store.FloatAttr(s.t0.TCB().MJD())); err != nil {
			return fmt.Errorf("persist %s: %w", T0Attr, err)
		}
	}

	return nil
}

// Restore reads a container written by Persist. When n > 0 only the first n
// samples of each key are loaded. opts are applied after the reference epoch
// and before any values are read.
func Restore(g store.Group, n int, opts ...Option) (*Samples, error) {
	var all []Option
	if g.HasAttr(T0Attr) {
		a, err := g.Attr(T0Attr)
		if err != nil {
			return nil, err
		}
		mjd, ok := a.Float()
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a number", errs.ErrInvalidDataset, T0Attr)
		}
		t0, err := astrotime.New(mjd, astrotime.TCB)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errs.ErrInvalidDataset, T0Attr, err)
		}
		all = append(all, WithT0(t0))
	}

	s, err := New(append(all, opts...)...)
	if err != nil {
		return nil, err
	}

	for _, key := range AllKeys() {
		if !g.HasDataset(key.String()) {
			continue
		}
		q, err := store.ReadQuantity(g, key.String(), n)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", key, err)
		}
		if err := s.Set(key, q); err != nil {
			return nil, fmt.Errorf("restore %s: %w", key, err)
		}
	}

	return s, nil
}
