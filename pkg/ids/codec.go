// Package ids implements the opaque identifier codec. Raw storage
// identifiers are canonical UUID strings; the external form is the
// base64url encoding of the 16 raw bytes, so storage ids never appear
// verbatim in URLs or payloads.
package ids

import (
	"encoding/base64"

	"github.com/google/uuid"

	pkgerrors "cortex-backend/pkg/errors"
)

// encodedLen is the length of a token: 16 bytes in unpadded base64url.
const encodedLen = 22

// Encode converts a raw identifier into its external token form.
// Encoding is deterministic: the same raw id always yields the same
// token, across processes. Invalid raw ids encode to the empty string.
func Encode(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Decode converts an external token back to the raw identifier.
// It fails on anything that is not the exact output of Encode; in
// particular a bare UUID or hex string is rejected rather than passed
// through, so storage-format ids can never be smuggled in directly.
func Decode(token string) (string, error) {
	if len(token) != encodedLen {
		return "", pkgerrors.NewInvalidTokenError(token)
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(b) != 16 {
		return "", pkgerrors.NewInvalidTokenError(token)
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return "", pkgerrors.NewInvalidTokenError(token)
	}
	return id.String(), nil
}

// IsValidToken reports whether token has the shape of an encoded id.
// It never returns an error; input validators call it before Decode.
func IsValidToken(token string) bool {
	if len(token) != encodedLen {
		return false
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil && len(b) == 16
}
