package store

import (
	"testing"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/quantity"
	"github.com/stretchr/testify/require"
)

func TestQuantity_RoundTrip(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	p := quantity.New([]float64{10, 11, 12, 13}, quantity.Day)
	require.NoError(t, WriteQuantity(tree, "P", p))

	k := quantity.Scalar(1.5, quantity.KmPerSec)
	require.NoError(t, WriteQuantity(tree, "K", k))

	e := quantity.New([]float64{0.1, 0.2}, quantity.Dimensionless)
	require.NoError(t, WriteQuantity(tree, "e", e))

	got, err := ReadQuantity(tree, "P", 0)
	require.NoError(t, err)
	require.Equal(t, quantity.Day, got.Unit())
	require.Equal(t, p.Values(), got.Values())
	require.Equal(t, []int{4}, got.Shape())

	gotK, err := ReadQuantity(tree, "K", 2)
	require.NoError(t, err)
	require.True(t, gotK.IsScalar())
	require.Equal(t, quantity.KmPerSec, gotK.Unit())

	gotE, err := ReadQuantity(tree, "e", 0)
	require.NoError(t, err)
	require.Equal(t, quantity.Dimensionless, gotE.Unit())
}

func TestReadQuantity_Truncate(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	q, err := quantity.NewWithShape([]float64{1, 2, 3, 4, 5, 6}, []int{3, 2}, quantity.Degree)
	require.NoError(t, err)
	require.NoError(t, WriteQuantity(tree, "omega", q))

	got, err := ReadQuantity(tree, "omega", 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, got.Shape())
	require.Equal(t, []float64{1, 2, 3, 4}, got.Values())

	all, err := ReadQuantity(tree, "omega", 10)
	require.NoError(t, err)
	require.Equal(t, 3, all.Len())
}

func TestReadQuantity_Errors(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	_, err = ReadQuantity(tree, "missing", 0)
	require.ErrorIs(t, err, errs.ErrDatasetNotFound)

	require.NoError(t, tree.WriteDataset("bad", Dataset{
		Shape:  []int{1},
		Values: []float64{1},
		Attrs:  map[string]string{UnitAttr: "furlong"},
	}))
	_, err = ReadQuantity(tree, "bad", 0)
	require.Error(t, err)

	require.NoError(t, tree.WriteDataset("plain", NewDataset([]float64{1, 2})))
	plain, err := ReadQuantity(tree, "plain", 0)
	require.NoError(t, err)
	require.Equal(t, quantity.Dimensionless, plain.Unit())
}
