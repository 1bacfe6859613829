package encoding

import "iter"

// ColumnarEncoder appends values of one column to an internal pooled buffer.
type ColumnarEncoder[T comparable] interface {
	// Bytes returns the encoded byte slice.
	// The returned slice is valid until the next call to Write, WriteSlice, or Finish.
	// The caller should not modify the returned slice.
	Bytes() []byte

	// Len returns the number of encoded values.
	Len() int

	// Size returns the number of bytes written to the internal buffer.
	Size() int

	// Finish returns buffer resources to the pool.
	//
	// After calling Finish(), the encoder is no longer usable. Any subsequent calls to
	// Write(), WriteSlice(), Bytes(), or Size() will panic due to nil buffer.
	//
	//	encoder := NewNumericRawEncoder(engine)
	//	defer encoder.Finish()
	//
	//	encoder.WriteSlice(periods)
	//	payload := bytes.Clone(encoder.Bytes())
	Finish()

	// Write appends a single value.
	Write(data T)

	// WriteSlice appends a slice of values.
	WriteSlice(values []T)
}

// ColumnarDecoder reads values produced by the matching ColumnarEncoder.
type ColumnarDecoder[T comparable] interface {
	// All returns an iterator that yields all decoded items from the provided encoded data.
	//
	// The iterator yields exactly count values if the data is valid. If the data
	// is malformed or truncated it may yield fewer; callers compare the number of
	// yielded values against count.
	All(data []byte, count int) iter.Seq[T]

	// At retrieves the value at the zero-based index. The second return value is
	// false if index is outside [0, count) or the data is truncated.
	At(data []byte, index int, count int) (T, bool)
}

// DecodeAll collects every value yielded by dec and reports whether exactly
// count values were decoded.
func DecodeAll[T comparable](dec ColumnarDecoder[T], data []byte, count int) ([]T, bool) {
	out := make([]T, 0, count)
	for v := range dec.All(data, count) {
		out = append(out, v)
	}

	return out, len(out) == count
}
