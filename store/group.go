package store

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ella918/thejoker/encoding"
	"github.com/ella918/thejoker/errs"
)

// Group is a node in a hierarchical store.
//
// Implementations are safe for concurrent use.
type Group interface {
	// WriteDataset stores ds under name, replacing any existing dataset.
	WriteDataset(name string, ds Dataset) error
	// ReadDataset returns a copy of the named dataset, or errs.ErrDatasetNotFound.
	ReadDataset(name string) (Dataset, error)
	// HasDataset reports whether the named dataset exists.
	HasDataset(name string) bool
	// Datasets returns the dataset names in lexical order.
	Datasets() ([]string, error)

	// SetAttr stores a group attribute, replacing any existing value.
	SetAttr(name string, value Attr) error
	// Attr returns the named attribute, or errs.ErrAttrNotFound.
	Attr(name string) (Attr, error)
	// HasAttr reports whether the named attribute exists.
	HasAttr(name string) bool

	// Group returns the named child group, creating it if needed.
	Group(name string) (Group, error)
	// Groups returns the child group names in lexical order.
	Groups() ([]string, error)
}

// Dataset is a row-major float64 array with string attributes.
type Dataset struct {
	Shape  []int
	Values []float64
	Attrs  map[string]string
}

// NewDataset returns a one-dimensional dataset holding values.
func NewDataset(values []float64) Dataset {
	return Dataset{Shape: []int{len(values)}, Values: values}
}

// Validate checks that the shape matches the number of values and that all
// attribute names and values fit the file format.
func (d Dataset) Validate() error {
	size := 1
	for _, dim := range d.Shape {
		if dim < 0 {
			return fmt.Errorf("%w: negative dimension in shape %v", errs.ErrInvalidDataset, d.Shape)
		}
		size *= dim
	}
	if size != len(d.Values) {
		return fmt.Errorf("%w: shape %v needs %d values, got %d", errs.ErrInvalidDataset, d.Shape, size, len(d.Values))
	}
	if len(d.Shape) > maxRank {
		return fmt.Errorf("%w: rank %d exceeds %d", errs.ErrInvalidDataset, len(d.Shape), maxRank)
	}
	for k, v := range d.Attrs {
		if err := validateName(k); err != nil {
			return err
		}
		if len(v) > encoding.MaxTextLength {
			return fmt.Errorf("%w: attribute %q value exceeds %d bytes", errs.ErrInvalidDataset, k, encoding.MaxTextLength)
		}
	}

	return nil
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Shape:  append([]int{}, d.Shape...),
		Values: slices.Clone(d.Values),
	}
	if d.Attrs != nil {
		out.Attrs = maps.Clone(d.Attrs)
	}

	return out
}

// Len returns the leading dimension, or 0 for scalars.
func (d Dataset) Len() int {
	if len(d.Shape) == 0 {
		return 0
	}

	return d.Shape[0]
}

// AttrKind identifies the type held by an Attr.
type AttrKind uint8

const (
	AttrFloat AttrKind = iota + 1
	AttrString
)

// Attr is a scalar group attribute holding either a float64 or a string.
type Attr struct {
	kind AttrKind
	num  float64
	text string
}

// FloatAttr returns a float attribute.
func FloatAttr(v float64) Attr {
	return Attr{kind: AttrFloat, num: v}
}

// StringAttr returns a string attribute.
func StringAttr(s string) Attr {
	return Attr{kind: AttrString, text: s}
}

// Kind returns the attribute type.
func (a Attr) Kind() AttrKind {
	return a.kind
}

// Float returns the value of a float attribute.
func (a Attr) Float() (float64, bool) {
	return a.num, a.kind == AttrFloat
}

// Text returns the value of a string attribute.
func (a Attr) Text() (string, bool) {
	return a.text, a.kind == AttrString
}

func (a Attr) String() string {
	switch a.kind {
	case AttrFloat:
		return fmt.Sprint(a.num)
	case AttrString:
		return a.text
	default:
		return "<invalid>"
	}
}

func (a Attr) validate() error {
	switch a.kind {
	case AttrFloat:
		return nil
	case AttrString:
		if len(a.text) > encoding.MaxTextLength {
			return fmt.Errorf("%w: string attribute exceeds %d bytes", errs.ErrInvalidDataset, encoding.MaxTextLength)
		}

		return nil
	default:
		return fmt.Errorf("%w: attribute has no value", errs.ErrInvalidDataset)
	}
}

const maxRank = 32

// validateName rejects names that cannot be stored: empty, too long for the
// length prefix, or containing the path separator.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", errs.ErrInvalidDataset)
	}
	if len(name) > encoding.MaxTextLength {
		return fmt.Errorf("%w: name longer than %d bytes", errs.ErrInvalidDataset, encoding.MaxTextLength)
	}
	if strings.Contains(name, pathSeparator) {
		return fmt.Errorf("%w: name %q contains %q", errs.ErrInvalidDataset, name, pathSeparator)
	}

	return nil
}

const pathSeparator = "/"
