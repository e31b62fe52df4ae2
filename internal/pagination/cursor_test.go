package pagination_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leadsearch/internal/pagination"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 24, 25, 100, 9999, 1 << 30} {
		token := pagination.EncodeCursor(offset)
		got, err := pagination.DecodeCursor(token)
		require.NoError(t, err, "offset %d", offset)
		assert.Equal(t, offset, got)
	}
}

func TestEncodeCursorFormat(t *testing.T) {
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("o=50")), pagination.EncodeCursor(50))
}

func TestDecodeCursorLegacy(t *testing.T) {
	got, err := pagination.DecodeCursor(base64.StdEncoding.EncodeToString([]byte("75")))
	require.NoError(t, err)
	assert.Equal(t, 75, got)
}

func TestDecodeCursorRawInteger(t *testing.T) {
	got, err := pagination.DecodeCursor("40")
	require.NoError(t, err)
	assert.Equal(t, 40, got)
}

func TestDecodeCursorURLSafeUnpadded(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte("o=125"))
	got, err := pagination.DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, 125, got)
}

func TestDecodeCursorRejects(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"whitespace":       "   ",
		"garbage":          "%%%not-base64%%%",
		"encoded negative": base64.StdEncoding.EncodeToString([]byte("o=-5")),
		"legacy negative":  base64.StdEncoding.EncodeToString([]byte("-5")),
		"raw negative":     "-5",
		"non-integer":      base64.StdEncoding.EncodeToString([]byte("o=abc")),
		"empty offset":     base64.StdEncoding.EncodeToString([]byte("o=")),
		"overflow":         "99999999999999999999999",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pagination.DecodeCursor(token)
			assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
		})
	}
}
