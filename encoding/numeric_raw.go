package encoding

import (
	"iter"
	"math"

	"github.com/ella918/thejoker/endian"
	"github.com/ella918/thejoker/internal/pool"
)

const rawValueSize = 8

// NumericRawEncoder stores float64 values as their IEEE 754 bits, 8 bytes
// each, in the engine's byte order. It is lossless for every value including
// NaN payloads and signed zeros.
type NumericRawEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

var _ ColumnarEncoder[float64] = (*NumericRawEncoder)(nil)

// NewNumericRawEncoder creates a raw encoder writing in engine's byte order.
func NewNumericRawEncoder(engine endian.EndianEngine) *NumericRawEncoder {
	return &NumericRawEncoder{engine: engine, buf: pool.GetDatasetBuffer()}
}

func (e *NumericRawEncoder) open(op string) *pool.ByteBuffer {
	if e.buf == nil {
		panic("raw encoder: " + op + " after Finish")
	}

	return e.buf
}

// Write appends one value.
func (e *NumericRawEncoder) Write(val float64) {
	buf := e.open("Write")
	buf.B = e.engine.AppendUint64(buf.B, math.Float64bits(val))
	e.count++
}

// WriteSlice appends values after growing the buffer once.
func (e *NumericRawEncoder) WriteSlice(values []float64) {
	buf := e.open("WriteSlice")
	buf.Grow(len(values) * rawValueSize)
	for _, v := range values {
		buf.B = e.engine.AppendUint64(buf.B, math.Float64bits(v))
	}
	e.count += len(values)
}

// Bytes returns the encoded column. It is valid until the next write or Finish.
func (e *NumericRawEncoder) Bytes() []byte {
	return e.open("Bytes").Bytes()
}

// Len returns the number of values written.
func (e *NumericRawEncoder) Len() int {
	return e.count
}

// Size returns the encoded size in bytes.
func (e *NumericRawEncoder) Size() int {
	return e.open("Size").Len()
}

// Finish returns the buffer to the pool. The encoder is unusable afterwards.
func (e *NumericRawEncoder) Finish() {
	if e.buf != nil {
		pool.PutDatasetBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

// NumericRawDecoder reads columns written by NumericRawEncoder. It holds no
// state and is passed by value.
type NumericRawDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[float64] = NumericRawDecoder{}

// NewNumericRawDecoder creates a decoder for columns written with engine.
func NewNumericRawDecoder(engine endian.EndianEngine) NumericRawDecoder {
	return NumericRawDecoder{engine: engine}
}

func (d NumericRawDecoder) value(data []byte, i int) float64 {
	return math.Float64frombits(d.engine.Uint64(data[i*rawValueSize:]))
}

// All yields count values, or nothing when data is shorter than count values.
func (d NumericRawDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if count <= 0 || len(data) < count*rawValueSize {
			return
		}
		for i := range count {
			if !yield(d.value(data, i)) {
				return
			}
		}
	}
}

// At returns value index in constant time.
func (d NumericRawDecoder) At(data []byte, index int, count int) (float64, bool) {
	if index < 0 || index >= count || (index+1)*rawValueSize > len(data) {
		return 0, false
	}

	return d.value(data, index), true
}
