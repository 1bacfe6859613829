package store

import (
	"fmt"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/quantity"
)

// UnitAttr is the dataset attribute that records a quantity's unit.
const UnitAttr = "unit"

// WriteQuantity stores q as the named dataset, recording its unit.
func WriteQuantity(g Group, name string, q quantity.Quantity) error {
	ds := Dataset{
		Shape:  q.Shape(),
		Values: q.Values(),
		Attrs:  map[string]string{UnitAttr: q.Unit().String()},
	}

	return g.WriteDataset(name, ds)
}

// ReadQuantity loads the named dataset as a quantity. When 0 < n < len, only
// the first n rows are returned. Datasets without a unit attribute are
// dimensionless.
func ReadQuantity(g Group, name string, n int) (quantity.Quantity, error) {
	ds, err := g.ReadDataset(name)
	if err != nil {
		return quantity.Quantity{}, err
	}

	unit := quantity.Dimensionless
	if s, ok := ds.Attrs[UnitAttr]; ok {
		if unit, err = quantity.ParseUnit(s); err != nil {
			return quantity.Quantity{}, fmt.Errorf("dataset %q: %w", name, err)
		}
	}

	q, err := quantity.NewWithShape(ds.Values, ds.Shape, unit)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("%w: dataset %q: %w", errs.ErrInvalidDataset, name, err)
	}
	if n > 0 && !q.IsScalar() && n < q.Len() {
		return q.Slice(0, n)
	}

	return q, nil
}
