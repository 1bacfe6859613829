package store

import (
	"bytes"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/format"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, g Group) {
	t.Helper()

	require.NoError(t, g.WriteDataset("P", Dataset{
		Shape:  []int{4},
		Values: []float64{10.1, 10.2, 10.2, math.Inf(1)},
		Attrs:  map[string]string{"unit": "d"},
	}))
	require.NoError(t, g.WriteDataset("grid", Dataset{
		Shape:  []int{2, 3},
		Values: []float64{1, 2, 3, -4, -5, -6},
	}))
	require.NoError(t, g.WriteDataset("scalar", Dataset{Shape: []int{}, Values: []float64{42}}))
	require.NoError(t, g.WriteDataset("empty", Dataset{Shape: []int{0}, Values: []float64{}}))
	require.NoError(t, g.SetAttr("t0_bmjd", FloatAttr(58000.25)))
	require.NoError(t, g.SetAttr("label", StringAttr("run-1")))

	child, err := g.Group("chain")
	require.NoError(t, err)
	require.NoError(t, child.WriteDataset("e", NewDataset([]float64{0.1, 0.2})))

	grandchild, err := child.Group("inner")
	require.NoError(t, err)
	require.NoError(t, grandchild.SetAttr("depth", FloatAttr(2)))
}

func verify(t *testing.T, g Group) {
	t.Helper()

	names, err := g.Datasets()
	require.NoError(t, err)
	require.Equal(t, []string{"P", "empty", "grid", "scalar"}, names)

	p, err := g.ReadDataset("P")
	require.NoError(t, err)
	require.Equal(t, []int{4}, p.Shape)
	require.Equal(t, []float64{10.1, 10.2, 10.2, math.Inf(1)}, p.Values)
	require.Equal(t, "d", p.Attrs["unit"])

	grid, err := g.ReadDataset("grid")
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, grid.Shape)
	require.Equal(t, []float64{1, 2, 3, -4, -5, -6}, grid.Values)

	scalar, err := g.ReadDataset("scalar")
	require.NoError(t, err)
	require.Empty(t, scalar.Shape)
	require.Equal(t, []float64{42}, scalar.Values)

	empty, err := g.ReadDataset("empty")
	require.NoError(t, err)
	require.Equal(t, []int{0}, empty.Shape)
	require.Empty(t, empty.Values)

	t0, err := g.Attr("t0_bmjd")
	require.NoError(t, err)
	v, ok := t0.Float()
	require.True(t, ok)
	require.Equal(t, 58000.25, v)

	label, err := g.Attr("label")
	require.NoError(t, err)
	s, ok := label.Text()
	require.True(t, ok)
	require.Equal(t, "run-1", s)

	groups, err := g.Groups()
	require.NoError(t, err)
	require.Equal(t, []string{"chain"}, groups)

	child, err := g.Group("chain")
	require.NoError(t, err)
	e, err := child.ReadDataset("e")
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2}, e.Values)

	inner, err := child.Group("inner")
	require.NoError(t, err)
	require.True(t, inner.HasAttr("depth"))
}

func TestTree_EncodeDecode(t *testing.T) {
	encodings := []format.EncodingType{format.TypeRaw, format.TypeGorilla}
	compressions := []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	}

	for _, enc := range encodings {
		for _, comp := range compressions {
			for _, big := range []bool{false, true} {
				name := enc.String() + "/" + comp.String()
				endianOpt := WithLittleEndian()
				if big {
					name += "/big"
					endianOpt = WithBigEndian()
				}

				t.Run(name, func(t *testing.T) {
					tree, err := NewTree(WithEncoding(enc), WithCompression(comp), endianOpt)
					require.NoError(t, err)
					populate(t, tree)

					var buf bytes.Buffer
					require.NoError(t, tree.Encode(&buf))

					h, err := ParseHeader(buf.Bytes())
					require.NoError(t, err)
					require.False(t, h.IsRecord())
					require.Equal(t, uint32(3), h.Count)
					require.Equal(t, enc, h.Encoding)
					require.Equal(t, comp, h.Compression)

					decoded, err := Decode(&buf)
					require.NoError(t, err)
					verify(t, decoded)
				})
			}
		}
	}
}

func TestTree_DecodeCorrupt(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)
	populate(t, tree)

	var buf bytes.Buffer
	require.NoError(t, tree.Encode(&buf))
	frame := buf.Bytes()

	t.Run("Checksum", func(t *testing.T) {
		data := bytes.Clone(frame)
		data[len(data)-1] ^= 0xFF
		_, err := Decode(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("Magic number", func(t *testing.T) {
		data := bytes.Clone(frame)
		data[1] = 0x00
		_, err := Decode(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(frame[:len(frame)-3]))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Header only", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(frame[:10]))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Record frame", func(t *testing.T) {
		cfg, err := NewConfig()
		require.NoError(t, err)
		record, err := encodeRecord(cfg, NewDataset([]float64{1}))
		require.NoError(t, err)

		_, err = Decode(bytes.NewReader(record))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})
}

func TestTree_FileRoundTrip(t *testing.T) {
	tree, err := NewTree(WithCompression(format.CompressionLZ4))
	require.NoError(t, err)
	populate(t, tree)

	path := filepath.Join(t.TempDir(), "samples.jkr")
	require.NoError(t, tree.WriteFile(path))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	verify(t, decoded)
	require.Equal(t, format.CompressionLZ4, decoded.cfg.Compression())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestTree_Errors(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	_, err = tree.ReadDataset("nope")
	require.ErrorIs(t, err, errs.ErrDatasetNotFound)

	_, err = tree.Attr("nope")
	require.ErrorIs(t, err, errs.ErrAttrNotFound)

	require.ErrorIs(t, tree.WriteDataset("", NewDataset(nil)), errs.ErrInvalidDataset)
	require.ErrorIs(t, tree.WriteDataset("a/b", NewDataset(nil)), errs.ErrInvalidDataset)
	require.ErrorIs(t, tree.WriteDataset("bad", Dataset{Shape: []int{3}, Values: []float64{1}}), errs.ErrInvalidDataset)
	require.ErrorIs(t, tree.SetAttr("none", Attr{}), errs.ErrInvalidDataset)

	_, err = tree.Group("g")
	require.NoError(t, err)
	require.ErrorIs(t, tree.WriteDataset("g", NewDataset([]float64{1})), errs.ErrInvalidDataset)

	require.NoError(t, tree.WriteDataset("d", NewDataset([]float64{1})))
	_, err = tree.Group("d")
	require.ErrorIs(t, err, errs.ErrInvalidDataset)
}

func TestTree_CopiesValues(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	values := []float64{1, 2, 3}
	require.NoError(t, tree.WriteDataset("x", NewDataset(values)))
	values[0] = 100

	ds, err := tree.ReadDataset("x")
	require.NoError(t, err)
	require.Equal(t, 1.0, ds.Values[0])

	ds.Values[1] = 200
	again, err := tree.ReadDataset("x")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, again.Values)
}

func TestTree_ConcurrentAccess(t *testing.T) {
	tree, err := NewTree()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child, err := tree.Group("shared")
			if err != nil {
				return
			}
			_ = child.WriteDataset(string(rune('a'+i)), NewDataset([]float64{float64(i)}))
			_, _ = tree.Datasets()
		}()
	}
	wg.Wait()

	child, err := tree.Group("shared")
	require.NoError(t, err)
	names, err := child.Datasets()
	require.NoError(t, err)
	require.Len(t, names, 8)
}

func TestRecord_RoundTrip(t *testing.T) {
	cfg, err := NewConfig(WithBigEndian(), WithEncoding(format.TypeRaw))
	require.NoError(t, err)

	ds := Dataset{Shape: []int{2, 2}, Values: []float64{1, 2, 3, 4}, Attrs: map[string]string{"unit": "km / s"}}
	record, err := encodeRecord(cfg, ds)
	require.NoError(t, err)

	got, err := decodeRecord(record)
	require.NoError(t, err)
	require.Equal(t, ds, got)

	tree, err := NewTree()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tree.Encode(&buf))
	_, err = decodeRecord(buf.Bytes())
	require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
}

func BenchmarkTree_Encode(b *testing.B) {
	values := make([]float64, 10000)
	for i := range values {
		values[i] = 10 + math.Sin(float64(i)/100)
	}

	tree, err := NewTree()
	require.NoError(b, err)
	require.NoError(b, tree.WriteDataset("P", NewDataset(values)))

	var buf bytes.Buffer
	for b.Loop() {
		buf.Reset()
		if err := tree.Encode(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
