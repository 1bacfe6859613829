//go:build cgo && cgozstd

package compress

import (
	"fmt"

	"github.com/ella918/thejoker/format"
	"github.com/valyala/gozstd"
)

// zstdStd uses the cgo libzstd bindings. Frames are interchangeable with the
// pure-Go build.
type zstdStd struct{}

// zstdLevel matches the ratio of the pure-Go SpeedBetterCompression level.
const zstdLevel = 7

func (zstdStd) Type() format.CompressionType { return format.CompressionZstd }

func (zstdStd) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, src, zstdLevel), nil
}

func (zstdStd) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, src)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) > MaxDecodedSize {
		return nil, fmt.Errorf("zstd decompression failed: %d bytes exceeds %d", len(out), MaxDecodedSize)
	}

	return out, nil
}
