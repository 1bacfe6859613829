package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarStringDecoder_RoundTrip(t *testing.T) {
	names := []string{"P", "M0", "e", "omega", "jitter", "K", "v0", ""}

	var data []byte
	for _, name := range names {
		var err error
		data, err = AppendVarString(data, name)
		require.NoError(t, err)
	}

	decoder := NewVarStringDecoder()
	var decoded []string
	for s := range decoder.All(data, len(names)) {
		decoded = append(decoded, s)
	}
	require.Equal(t, names, decoded)

	text, next, err := decoder.Read(data, 0)
	require.NoError(t, err)
	require.Equal(t, "P", text)
	require.Equal(t, 2, next)

	text, _, err = decoder.Read(data, next)
	require.NoError(t, err)
	require.Equal(t, "M0", text)
}

func TestVarStringDecoder_Truncated(t *testing.T) {
	decoder := NewVarStringDecoder()

	_, _, err := decoder.Read([]byte{5, 'a', 'b'}, 0)
	require.Error(t, err)

	_, next, err := decoder.Read([]byte{1, 'a'}, 2)
	require.Error(t, err)
	require.Equal(t, 2, next)

	count := 0
	for range decoder.All([]byte{1, 'a', 3, 'b'}, 2) {
		count++
	}
	require.Equal(t, 1, count)
}

func TestAppendVarString(t *testing.T) {
	dst, err := AppendVarString([]byte{0xAA}, "deg")
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 3, 'd', 'e', 'g'}, dst)

	dst, err = AppendVarString(nil, strings.Repeat("a", MaxTextLength))
	require.NoError(t, err)
	require.Len(t, dst, 256)

	out, err := AppendVarString(dst, strings.Repeat("z", MaxTextLength+1))
	require.ErrorContains(t, err, "exceeds maximum")
	require.Equal(t, dst, out)
}
