package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ella918/thejoker/endian"
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/format"
)

const (
	// HeaderSize is the fixed size of a frame header in bytes.
	HeaderSize = 32

	RecordMask      = 0x0001 // payload is a single dataset record rather than a node tree
	EndiannessMask  = 0x0002 // 0=little, 1=big
	ReservedMask    = 0x000C // must be zero
	MagicNumberMask = 0xFFF0

	MagicStoreV1 = 0x7A10 // store frame format v1
)

// Header is the fixed-size header at the start of every frame.
//
// The Options field is always little-endian; all other fields use the byte
// order selected by the endianness bit.
type Header struct {
	// Options packs the record bit, the endianness bit and the magic number.
	Options uint16 // byte offset 0-1
	// Encoding is the dataset value encoding.
	Encoding format.EncodingType // byte offset 2
	// Compression is the payload compression.
	Compression format.CompressionType // byte offset 3
	// Count is the number of group nodes, or 1 for a dataset record.
	Count uint32 // byte offset 4-7
	// PayloadSize is the length of the compressed payload.
	PayloadSize uint64 // byte offset 8-15
	// RawSize is the length of the payload before compression.
	RawSize uint64 // byte offset 16-23
	// Checksum is the xxHash64 of the compressed payload.
	Checksum uint64 // byte offset 24-31
}

func newHeader(cfg *Config, record bool) Header {
	h := Header{
		Options:     MagicStoreV1,
		Encoding:    cfg.encoding,
		Compression: cfg.compression,
	}
	if record {
		h.Options |= RecordMask
	}
	if endian.IsBigEndian(cfg.engine) {
		h.Options |= EndiannessMask
	}

	return h
}

// IsRecord reports whether the payload is a single dataset record.
func (h Header) IsRecord() bool {
	return h.Options&RecordMask != 0
}

// Engine returns the byte order of the frame.
func (h Header) Engine() endian.EndianEngine {
	return endian.FromFlag(h.Options&EndiannessMask != 0)
}

// Parse parses the header from a byte slice of exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Options = binary.LittleEndian.Uint16(data[0:2])
	if h.Options&MagicNumberMask != MagicStoreV1 {
		return errs.ErrInvalidMagicNumber
	}
	if h.Options&ReservedMask != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidHeaderFlags)
	}

	h.Encoding = format.EncodingType(data[2])
	h.Compression = format.CompressionType(data[3])
	if !h.Encoding.Valid() || !h.Compression.Valid() {
		return fmt.Errorf("%w: encoding %s compression %s", errs.ErrInvalidHeaderFlags, h.Encoding, h.Compression)
	}

	engine := h.Engine()
	h.Count = engine.Uint32(data[4:8])
	h.PayloadSize = engine.Uint64(data[8:16])
	h.RawSize = engine.Uint64(data[16:24])
	h.Checksum = engine.Uint64(data[24:32])

	return nil
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.Engine()

	binary.LittleEndian.PutUint16(b[0:2], h.Options)
	b[2] = uint8(h.Encoding)
	b[3] = uint8(h.Compression)
	engine.PutUint32(b[4:8], h.Count)
	engine.PutUint64(b[8:16], h.PayloadSize)
	engine.PutUint64(b[16:24], h.RawSize)
	engine.PutUint64(b[24:32], h.Checksum)

	return b
}

// ParseHeader parses a Header from the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	var h Header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
