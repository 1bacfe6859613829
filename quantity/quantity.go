// Package quantity provides arrays of physical values tagged with a shape and a unit.
package quantity

import (
	"fmt"
	"slices"
)

// Quantity is an immutable array of float64 values with a shape and a unit.
//
// A scalar has an empty shape and exactly one value. Accessors that return
// slices return copies.
type Quantity struct {
	values []float64
	shape  []int
	unit   Unit
}

// New returns a one-dimensional quantity holding a copy of values.
func New(values []float64, unit Unit) Quantity {
	return Quantity{
		values: slices.Clone(values),
		shape:  []int{len(values)},
		unit:   unit,
	}
}

// Scalar returns a zero-dimensional quantity.
func Scalar(value float64, unit Unit) Quantity {
	return Quantity{values: []float64{value}, shape: []int{}, unit: unit}
}

// NewWithShape returns a quantity with an explicit row-major shape.
func NewWithShape(values []float64, shape []int, unit Unit) (Quantity, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return Quantity{}, fmt.Errorf("negative dimension in shape %v", shape)
		}
		size *= d
	}
	if size != len(values) {
		return Quantity{}, fmt.Errorf("shape %v needs %d values, got %d", shape, size, len(values))
	}

	return Quantity{values: slices.Clone(values), shape: append([]int{}, shape...), unit: unit}, nil
}

// Unit returns the unit of q.
func (q Quantity) Unit() Unit {
	return q.unit
}

// Shape returns a copy of the shape of q. Scalars have an empty shape.
func (q Quantity) Shape() []int {
	return append([]int{}, q.shape...)
}

// Size returns the number of values in q.
func (q Quantity) Size() int {
	return len(q.values)
}

// IsScalar reports whether q is zero-dimensional.
func (q Quantity) IsScalar() bool {
	return len(q.shape) == 0 && len(q.values) == 1
}

// Values returns a copy of the values of q in row-major order.
func (q Quantity) Values() []float64 {
	return slices.Clone(q.values)
}

// At returns the i-th value in row-major order.
func (q Quantity) At(i int) float64 {
	return q.values[i]
}

// Value returns the single value of a scalar or one-element quantity.
func (q Quantity) Value() (float64, error) {
	if len(q.values) != 1 {
		return 0, fmt.Errorf("quantity with shape %v is not a scalar", q.shape)
	}

	return q.values[0], nil
}

// Len returns the length of the leading axis, or 0 for scalars.
func (q Quantity) Len() int {
	if len(q.shape) == 0 {
		return 0
	}

	return q.shape[0]
}

// SameShape reports whether q and other have identical shapes.
func (q Quantity) SameShape(other Quantity) bool {
	return slices.Equal(q.shape, other.shape)
}

// Slice returns rows [i, j) along the leading axis as an independent copy.
func (q Quantity) Slice(i, j int) (Quantity, error) {
	if len(q.shape) == 0 {
		return Quantity{}, fmt.Errorf("cannot slice a scalar quantity")
	}
	if i < 0 || j < i || j > q.shape[0] {
		return Quantity{}, fmt.Errorf("slice [%d:%d] out of range for length %d", i, j, q.shape[0])
	}

	row := q.rowSize()
	shape := slices.Clone(q.shape)
	shape[0] = j - i

	return Quantity{values: slices.Clone(q.values[i*row : j*row]), shape: shape, unit: q.unit}, nil
}

// Row returns row i along the leading axis with the leading axis removed.
func (q Quantity) Row(i int) (Quantity, error) {
	s, err := q.Slice(i, i+1)
	if err != nil {
		return Quantity{}, err
	}
	s.shape = s.shape[1:]

	return s, nil
}

// To converts q to unit u.
func (q Quantity) To(u Unit) (Quantity, error) {
	f, err := q.unit.Factor(u)
	if err != nil {
		return Quantity{}, err
	}

	out := Quantity{values: make([]float64, len(q.values)), shape: q.Shape(), unit: u}
	for i, v := range q.values {
		out.values[i] = v * f
	}

	return out, nil
}

// ValuesIn returns the values of q converted to unit u.
func (q Quantity) ValuesIn(u Unit) ([]float64, error) {
	c, err := q.To(u)
	if err != nil {
		return nil, err
	}

	return c.values, nil
}

// String renders q as "[v0 v1 ...] unit".
func (q Quantity) String() string {
	var body string
	if q.IsScalar() {
		body = fmt.Sprint(q.values[0])
	} else {
		body = fmt.Sprint(q.values)
	}
	if q.unit.name == "" {
		return body
	}

	return body + " " + q.unit.name
}

func (q Quantity) rowSize() int {
	row := 1
	for _, d := range q.shape[1:] {
		row *= d
	}

	return row
}
