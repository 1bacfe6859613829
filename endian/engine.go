// Package endian provides the byte order engines used by the column encoders
// and the store file header.
//
// An EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so that
// encoders can both patch fixed offsets and append to growing buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, math.Float64bits(v))
//
// All engines are immutable and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the engine matching the host byte order.
func Native() EndianEngine {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 0x0100)
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromFlag returns the big-endian engine when big is true and the
// little-endian engine otherwise.
func FromFlag(big bool) EndianEngine {
	if big {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
