// Package security holds the credential handling of the access passthrough.
// Users, sessions and permissions live in the external auth service; this
// service only forwards bearer tokens and never stores them in clear.
package security

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Common security errors
var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrAuthUnset    = errors.New("auth service base url is not configured")
)

// BearerToken returns the token of an "Authorization: Bearer x" header value.
// A header without the scheme is returned trimmed.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Digest is the hex blake2b-256 of the parts, each length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Digest(parts ...[]byte) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
