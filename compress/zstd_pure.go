//go:build !(cgo && cgozstd)

package compress

import (
	"fmt"
	"sync"

	"github.com/ella918/thejoker/format"
	"github.com/klauspost/compress/zstd"
)

// zstdStd uses the pure-Go klauspost encoder and decoder, pooled because
// both are expensive to create and allocation-free once warm.
type zstdStd struct{}

var zstdEncoders = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderCRC(false), // frames are checksummed by the store
		)
		if err != nil {
			panic(fmt.Sprintf("zstd encoder: %v", err))
		}

		return enc
	},
}

var zstdDecoders = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
		)
		if err != nil {
			panic(fmt.Sprintf("zstd decoder: %v", err))
		}

		return dec
	},
}

func (zstdStd) Type() format.CompressionType { return format.CompressionZstd }

func (zstdStd) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	enc, _ := zstdEncoders.Get().(*zstd.Encoder)
	defer zstdEncoders.Put(enc)

	return enc.EncodeAll(src, nil), nil
}

func (zstdStd) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	dec, _ := zstdDecoders.Get().(*zstd.Decoder)
	defer zstdDecoders.Put(dec)

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
