package compress

import (
	"fmt"

	"github.com/ella918/thejoker/format"
)

// MaxDecodedSize bounds the size of a decompressed payload. Inputs claiming or
// producing more are rejected as corrupt.
const MaxDecodedSize = 1 << 30

// Codec compresses dataset payloads and restores them.
//
// Implementations are stateless and safe for concurrent use. Compress never
// modifies its input; an empty input yields an empty output.
type Codec interface {
	// Type returns the compression identifier recorded in file headers.
	Type() format.CompressionType
	// Compress returns the compressed form of src.
	Compress(src []byte) ([]byte, error)
	// Decompress restores a payload produced by Compress of the same codec.
	Decompress(src []byte) ([]byte, error)
}

var (
	noneCodec Codec = passthrough{}
	zstdCodec Codec = zstdStd{}
	s2Codec   Codec = s2Block{}
	lz4Codec  Codec = lz4Block{}
)

// GetCodec returns the codec for a compression type.
func GetCodec(ct format.CompressionType) (Codec, error) {
	switch ct {
	case format.CompressionNone:
		return noneCodec, nil
	case format.CompressionZstd:
		return zstdCodec, nil
	case format.CompressionS2:
		return s2Codec, nil
	case format.CompressionLZ4:
		return lz4Codec, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", ct)
	}
}

// passthrough stores payloads uncompressed. Its outputs alias its inputs.
type passthrough struct{}

func (passthrough) Type() format.CompressionType { return format.CompressionNone }

func (passthrough) Compress(src []byte) ([]byte, error) { return src, nil }

func (passthrough) Decompress(src []byte) ([]byte, error) {
	if len(src) > MaxDecodedSize {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d", len(src), MaxDecodedSize)
	}

	return src, nil
}
