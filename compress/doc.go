// Package compress provides the payload codecs applied to encoded sample
// datasets before they are written by the store package.
//
// Storing a dataset is a two-stage process: the float64 column is first
// encoded losslessly (raw IEEE 754 bits or Gorilla XOR compression, see the
// encoding package) and the encoded bytes are then passed through one of the
// codecs below:
//
//   - None (format.CompressionNone): returns the input unchanged
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2   (format.CompressionS2): balanced
//   - LZ4  (format.CompressionLZ4): fastest decompression
//
// Codecs are stateless values; pooled encoders and decoders make them safe for
// concurrent use:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	packed, err := codec.Compress(payload)
//	payload, err = codec.Decompress(packed)
//
// The Zstd codec is backed by the pure-Go klauspost/compress implementation.
// Building with the cgozstd tag (and cgo enabled) switches it to the
// valyala/gozstd bindings instead; both produce standard Zstandard frames.
package compress
