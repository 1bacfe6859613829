package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ella918/thejoker/format"
	"github.com/pierrec/lz4/v4"
)

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 256

var lz4Compressors = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// lz4Block uses the LZ4 block format, which does not record the original size.
type lz4Block struct{}

func (lz4Block) Type() format.CompressionType { return format.CompressionLZ4 }

func (lz4Block) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	lc, _ := lz4Compressors.Get().(*lz4.Compressor)
	defer lz4Compressors.Put(lc)

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lc.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress starts with a buffer of 4x the input and doubles it on a short
// buffer error, up to the largest size the input could expand to.
func (lz4Block) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	limit := min(len(src)*lz4MaxRatio, MaxDecodedSize)
	size := min(len(src)*4, limit)
	for {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(src, buf)
		switch {
		case err == nil:
			return buf[:n], nil
		case errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && size < limit:
			size = min(size*2, limit)
		default:
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}
}
