package encoding

import (
	"iter"
	"math"
	"math/bits"

	"github.com/ella918/thejoker/internal/pool"
)

// NumericGorillaEncoder implements Facebook's Gorilla XOR compression for float64 values.
//
// Bit layout, most significant bit first:
//  1. The first value is stored uncompressed (64 bits).
//  2. Each following value is XORed with its predecessor:
//     - XOR is 0: a single '0' bit.
//     - XOR fits the previous meaningful-bit window: '10' + window bits.
//     - Otherwise: '11' + 5 bits leading zeros + 6 bits (window size - 1) + window bits.
//
// See https://www.vldb.org/pvldb/vol8/p1816-teller.pdf for algorithm details.
type NumericGorillaEncoder struct {
	prevValue    uint64
	count        int
	bitPos       int // bits used in the last byte of buf, 0 when it is full
	prevLeading  int
	prevTrailing int
	firstValue   bool

	buf *pool.ByteBuffer
}

var _ ColumnarEncoder[float64] = (*NumericGorillaEncoder)(nil)

// NewNumericGorillaEncoder creates a new Gorilla encoder for float64 values.
func NewNumericGorillaEncoder() *NumericGorillaEncoder {
	return &NumericGorillaEncoder{
		buf:         pool.GetDatasetBuffer(),
		firstValue:  true,
		prevLeading: -1,
	}
}

// Write encodes a single float64 value.
//
// Panics if Finish() has been called.
func (e *NumericGorillaEncoder) Write(val float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write values after Finish()")
	}

	e.count++
	valBits := math.Float64bits(val)

	if e.firstValue {
		e.firstValue = false
		e.prevValue = valBits
		e.writeBits(valBits, 64)

		return
	}

	e.writeValue(valBits)
}

// WriteSlice encodes a slice of float64 values.
//
// Panics if Finish() has been called.
func (e *NumericGorillaEncoder) WriteSlice(values []float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write values after Finish()")
	}

	// Worst case is 2+5+6+64 bits per value.
	e.buf.Grow(len(values)*10 + 1)
	for _, v := range values {
		e.Write(v)
	}
}

// Bytes returns the compressed stream. Unused bits of the final byte are zero.
//
// Panics if Finish() has been called.
func (e *NumericGorillaEncoder) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}

	return e.buf.Bytes()
}

// Len returns the number of encoded float64 values.
func (e *NumericGorillaEncoder) Len() int {
	return e.count
}

// Size returns the size in bytes of the compressed stream.
//
// Panics if Finish() has been called.
func (e *NumericGorillaEncoder) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Finish returns the buffer to the pool. The encoder is unusable afterwards.
func (e *NumericGorillaEncoder) Finish() {
	if e.buf != nil {
		pool.PutDatasetBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

func (e *NumericGorillaEncoder) writeValue(valBits uint64) {
	xor := valBits ^ e.prevValue
	e.prevValue = valBits

	if xor == 0 {
		e.writeBit(0)
		return
	}
	e.writeBit(1)

	leading := bits.LeadingZeros64(xor)
	trailing := bits.TrailingZeros64(xor)
	// 5 bits for the leading count
	if leading > 31 {
		leading = 31
	}

	if e.prevLeading >= 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		e.writeBit(0)
		e.writeBits(xor>>e.prevTrailing, 64-e.prevLeading-e.prevTrailing)

		return
	}

	blockSize := 64 - leading - trailing
	e.writeBit(1)
	e.writeBits(uint64(leading), 5)     //nolint:gosec
	e.writeBits(uint64(blockSize-1), 6) //nolint:gosec
	e.writeBits(xor>>trailing, blockSize)

	e.prevLeading = leading
	e.prevTrailing = trailing
}

func (e *NumericGorillaEncoder) writeBit(bit uint64) {
	if e.bitPos == 0 {
		e.buf.MustWrite([]byte{0})
	}
	if bit&1 == 1 {
		b := e.buf.Bytes()
		b[len(b)-1] |= 0x80 >> e.bitPos
	}
	e.bitPos = (e.bitPos + 1) & 7
}

func (e *NumericGorillaEncoder) writeBits(value uint64, numBits int) {
	for i := numBits - 1; i >= 0; i-- {
		e.writeBit(value >> i)
	}
}

// NumericGorillaDecoder decodes streams produced by NumericGorillaEncoder.
type NumericGorillaDecoder struct{}

var _ ColumnarDecoder[float64] = NumericGorillaDecoder{}

// NewNumericGorillaDecoder creates a new Gorilla decoder.
func NewNumericGorillaDecoder() NumericGorillaDecoder {
	return NumericGorillaDecoder{}
}

// All decodes up to count values, stopping early on a truncated or malformed stream.
func (d NumericGorillaDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if count <= 0 || len(data) < 8 {
			return
		}

		br := bitReader{data: data}
		prev, ok := br.readBits(64)
		if !ok || !yield(math.Float64frombits(prev)) {
			return
		}

		leading, trailing := -1, 0
		for i := 1; i < count; i++ {
			ctl, ok := br.readBit()
			if !ok {
				return
			}

			if ctl == 1 {
				window, ok := br.readBit()
				if !ok {
					return
				}
				if window == 1 {
					l, ok1 := br.readBits(5)
					size, ok2 := br.readBits(6)
					if !ok1 || !ok2 {
						return
					}
					leading = int(l)
					trailing = 64 - leading - int(size) - 1
					if trailing < 0 {
						return
					}
				} else if leading < 0 {
					return
				}

				meaningful, ok := br.readBits(64 - leading - trailing)
				if !ok {
					return
				}
				prev ^= meaningful << trailing
			}

			if !yield(math.Float64frombits(prev)) {
				return
			}
		}
	}
}

// At decodes the stream sequentially up to index.
func (d NumericGorillaDecoder) At(data []byte, index int, count int) (float64, bool) {
	if index < 0 || index >= count {
		return 0, false
	}

	i := 0
	for v := range d.All(data, index+1) {
		if i == index {
			return v, true
		}
		i++
	}

	return 0, false
}

type bitReader struct {
	data []byte
	pos  int // bit position
}

func (br *bitReader) readBit() (uint64, bool) {
	byteIdx := br.pos >> 3
	if byteIdx >= len(br.data) {
		return 0, false
	}
	bit := (br.data[byteIdx] >> (7 - br.pos&7)) & 1
	br.pos++

	return uint64(bit), true
}

func (br *bitReader) readBits(numBits int) (uint64, bool) {
	if br.pos+numBits > len(br.data)*8 {
		return 0, false
	}

	var v uint64
	for range numBits {
		bit, _ := br.readBit()
		v = v<<1 | bit
	}

	return v, true
}
