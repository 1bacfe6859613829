// Package encoding provides the column encoders used by the store file codec.
//
// Sample columns are float64 arrays. Two lossless encodings are available:
//
//   - Raw: 8 bytes per value in the chosen byte order. Fast, with random access.
//   - Gorilla: XOR compression of consecutive values (Pelkonen et al., VLDB 2015).
//     Effective when neighbouring draws share exponent and leading mantissa bits,
//     as posterior samples for a well-constrained parameter do.
//
// Dataset names and unit strings are written with AppendVarString, a uint8
// length-prefixed UTF-8 encoding.
//
// Encoders draw their buffers from internal/pool and must be released with
// Finish. Decoders are stateless values and safe for concurrent use.
//
//	enc := encoding.NewNumericGorillaEncoder()
//	defer enc.Finish()
//	enc.WriteSlice(values)
//
//	dec := encoding.NewNumericGorillaDecoder()
//	for v := range dec.All(enc.Bytes(), enc.Len()) {
//		_ = v
//	}
package encoding
