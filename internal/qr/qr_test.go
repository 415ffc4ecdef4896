package qr

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	t.Parallel()

	out, err := DataURL("http://localhost:3000/guest/abc-123")
	require.NoError(t, err)

	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(out, prefix), "got %q", out[:32])

	png, err := base64.StdEncoding.DecodeString(out[len(prefix):])
	require.NoError(t, err)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestDataURLTooLong(t *testing.T) {
	t.Parallel()

	// Past QR capacity the encoder must fail rather than truncate.
	_, err := DataURL(strings.Repeat("x", 8000))
	assert.Error(t, err)
}
