// Package hash checksums stored payloads with xxHash64.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum returns the xxHash64 digest of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify reports whether data hashes to sum.
func Verify(data []byte, sum uint64) bool {
	return xxhash.Sum64(data) == sum
}
