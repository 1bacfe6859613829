package compress

import (
	"fmt"

	"github.com/ella918/thejoker/format"
	"github.com/klauspost/compress/s2"
)

// s2Block uses the S2 block format. The decoded length is read from the block
// header and checked before any allocation.
type s2Block struct{}

func (s2Block) Type() format.CompressionType { return format.CompressionS2 }

func (s2Block) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, src), nil
}

func (s2Block) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("s2 decompression failed: block claims %d bytes", n)
	}

	out, err := s2.Decode(make([]byte, n), src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
