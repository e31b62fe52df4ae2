// Package pagination encodes opaque offset cursors and derives the paging
// links and metadata returned with every list response.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidCursor is returned for any token that does not decode to a
// non-negative offset.
var ErrInvalidCursor = errors.New("invalid cursor")

const offsetPrefix = "o="

// EncodeCursor returns the opaque token for offset.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(offsetPrefix + strconv.Itoa(offset)))
}

// DecodeCursor accepts the current "o=<offset>" format, the legacy format
// (base64 of the bare integer) and a raw integer string.
func DecodeCursor(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrInvalidCursor
	}
	if isDigits(token) {
		return parseOffset(token)
	}

	payload, err := decodeBase64(token)
	if err != nil {
		return 0, ErrInvalidCursor
	}
	return parseOffset(strings.TrimPrefix(payload, offsetPrefix))
}

func decodeBase64(token string) (string, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(token); err == nil {
			return string(b), nil
		}
	}
	return "", ErrInvalidCursor
}

func parseOffset(s string) (int, error) {
	if !isDigits(s) {
		return 0, ErrInvalidCursor
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidCursor
	}
	return n, nil
}

// isDigits reports whether s is a non-empty run of ASCII digits. Signs and
// whitespace are rejected so that negative offsets never parse.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
