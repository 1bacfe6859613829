package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	// Reference xxHash64 (seed 0) digests.
	require.Equal(t, uint64(0xef46db3751d8e999), Checksum(nil))
	require.Equal(t, uint64(0x4fdcca5ddb678139), Checksum([]byte("test")))
}

func TestVerify(t *testing.T) {
	payload := []byte{0x10, 0x7a, 1, 2, 3}
	sum := Checksum(payload)
	require.True(t, Verify(payload, sum))

	payload[2] ^= 0x01
	require.False(t, Verify(payload, sum))
}
