package encoding

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ella918/thejoker/endian"
	"github.com/stretchr/testify/require"
)

func gorillaRoundTrip(t *testing.T, values []float64) []byte {
	t.Helper()

	encoder := NewNumericGorillaEncoder()
	defer encoder.Finish()
	encoder.WriteSlice(values)
	require.Equal(t, len(values), encoder.Len())

	data := append([]byte(nil), encoder.Bytes()...)
	decoded, ok := DecodeAll[float64](NewNumericGorillaDecoder(), data, len(values))
	require.True(t, ok)
	require.Len(t, decoded, len(values))
	for i := range values {
		require.Equal(t, math.Float64bits(values[i]), math.Float64bits(decoded[i]), "index %d", i)
	}

	return data
}

func TestNumericGorilla_RoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
	}{
		{"single", []float64{42.5}},
		{"constant", []float64{3, 3, 3, 3, 3, 3}},
		{"alternating", []float64{1, -1, 1, -1, 1}},
		{"special", []float64{0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64}},
		{"nan", []float64{math.NaN(), 1, math.NaN()}},
		{"periods", []float64{10.001, 10.002, 9.998, 10.000, 10.003}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gorillaRoundTrip(t, tc.values)
		})
	}
}

func TestNumericGorilla_RandomWalk(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values := make([]float64, 5000)
	v := 100.0
	for i := range values {
		v += rng.NormFloat64() * 0.01
		values[i] = v
	}

	gorillaRoundTrip(t, values)
}

func TestNumericGorilla_CompressesRepeats(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 0.5
	}

	data := gorillaRoundTrip(t, values)
	// 64 bits for the first value then one bit per repeat.
	require.Equal(t, 8+(999+7)/8, len(data))

	raw := NewNumericRawEncoder(endian.GetLittleEndianEngine())
	defer raw.Finish()
	raw.WriteSlice(values)
	require.Less(t, len(data), raw.Size())
}

func TestNumericGorilla_WriteMatchesWriteSlice(t *testing.T) {
	values := []float64{1.5, 1.25, 1.25, 2, 1e-9, -7}

	single := NewNumericGorillaEncoder()
	defer single.Finish()
	for _, v := range values {
		single.Write(v)
	}

	bulk := NewNumericGorillaEncoder()
	defer bulk.Finish()
	bulk.WriteSlice(values[:2])
	bulk.WriteSlice(values[2:])

	require.Equal(t, single.Bytes(), bulk.Bytes())
	require.Equal(t, single.Size(), bulk.Size())
}

func TestNumericGorillaDecoder_At(t *testing.T) {
	values := []float64{2.5, 2.75, 3, 3, -4}
	data := gorillaRoundTrip(t, values)
	decoder := NewNumericGorillaDecoder()

	for i, want := range values {
		got, ok := decoder.At(data, i, len(values))
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	_, ok := decoder.At(data, len(values), len(values))
	require.False(t, ok)
	_, ok = decoder.At(data, -1, len(values))
	require.False(t, ok)
}

func TestNumericGorillaDecoder_Truncated(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	data := gorillaRoundTrip(t, values)

	decoded, ok := DecodeAll[float64](NewNumericGorillaDecoder(), data[:len(data)-4], len(values))
	require.False(t, ok)
	require.Less(t, len(decoded), len(values))

	decoded, ok = DecodeAll[float64](NewNumericGorillaDecoder(), data[:4], 1)
	require.False(t, ok)
	require.Empty(t, decoded)
}

func TestNumericGorillaEncoder_PanicsAfterFinish(t *testing.T) {
	encoder := NewNumericGorillaEncoder()
	encoder.Finish()

	require.Panics(t, func() { encoder.Write(1) })
	require.Panics(t, func() { encoder.WriteSlice([]float64{1}) })
	require.Panics(t, func() { _ = encoder.Bytes() })
}

func BenchmarkNumericGorillaEncoder_WriteSlice(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	values := make([]float64, 4096)
	for i := range values {
		values[i] = 10 + rng.Float64()*0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		encoder := NewNumericGorillaEncoder()
		encoder.WriteSlice(values)
		encoder.Finish()
	}
}

func BenchmarkNumericGorillaDecoder_All(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	values := make([]float64, 4096)
	for i := range values {
		values[i] = 10 + rng.Float64()*0.01
	}
	encoder := NewNumericGorillaEncoder()
	encoder.WriteSlice(values)
	data := append([]byte(nil), encoder.Bytes()...)
	encoder.Finish()

	decoder := NewNumericGorillaDecoder()
	b.ReportAllocs()
	for b.Loop() {
		for v := range decoder.All(data, len(values)) {
			_ = v
		}
	}
}
