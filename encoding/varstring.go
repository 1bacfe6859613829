package encoding

import (
	"fmt"
	"iter"
)

// MaxTextLength is the maximum length for names and unit strings.
// Since the length prefix is a uint8, the maximum string length is 255 bytes.
const MaxTextLength = 255

// AppendVarString appends text to dst with a uint8 length prefix:
// one length byte followed by the UTF-8 bytes.
func AppendVarString(dst []byte, text string) ([]byte, error) {
	if len(text) > MaxTextLength {
		return dst, fmt.Errorf("text length %d exceeds maximum %d", len(text), MaxTextLength)
	}
	dst = append(dst, uint8(len(text))) //nolint:gosec

	return append(dst, text...), nil
}

// VarStringDecoder decodes a run of strings written by AppendVarString.
type VarStringDecoder struct{}

// NewVarStringDecoder creates a new variable-length string decoder.
func NewVarStringDecoder() VarStringDecoder {
	return VarStringDecoder{}
}

// All yields up to count strings, stopping at the first truncated entry.
func (d VarStringDecoder) All(data []byte, count int) iter.Seq[string] {
	return func(yield func(string) bool) {
		offset := 0
		for range count {
			text, next, ok := readVarString(data, offset)
			if !ok || !yield(text) {
				return
			}
			offset = next
		}
	}
}

// Read decodes the string starting at offset and returns the offset just past it.
func (d VarStringDecoder) Read(data []byte, offset int) (string, int, error) {
	text, next, ok := readVarString(data, offset)
	if !ok {
		return "", offset, fmt.Errorf("truncated string at offset %d", offset)
	}

	return text, next, nil
}

func readVarString(data []byte, offset int) (string, int, bool) {
	if offset < 0 || offset >= len(data) {
		return "", offset, false
	}

	length := int(data[offset])
	end := offset + 1 + length
	if end > len(data) {
		return "", offset, false
	}

	return string(data[offset+1 : end]), end, true
}
