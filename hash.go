package castree

import (
	"encoding/hex"
	"fmt"
)

// Hash20Len is the byte length of a Hash20.
const Hash20Len = 20

// Hash20 is a fixed-length secondary content checksum (SHA-1 sized).
//
// The zero value is the well-known "absent" marker on the wire: a real
// checksum is assumed never to be all zero bytes. This is a convention of
// the format, not a cryptographic guarantee.
type Hash20 [Hash20Len]byte

// Hash20FromBytes copies b into a Hash20. b must be exactly Hash20Len bytes.
func Hash20FromBytes(b []byte) (Hash20, error) {
	var h Hash20
	if len(b) != Hash20Len {
		return h, fmt.Errorf("castree: checksum must be %d bytes, got %d", Hash20Len, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Hash20FromHex parses a 40-character hex string into a Hash20.
func Hash20FromHex(s string) (Hash20, error) {
	var h Hash20
	if hex.DecodedLen(len(s)) != Hash20Len {
		return h, fmt.Errorf("castree: checksum hex must be %d characters, got %d", 2*Hash20Len, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("castree: parse checksum: %w", err)
	}
	return h, nil
}

// IsZero reports whether h is the all-zero "absent" value.
func (h Hash20) IsZero() bool {
	return h == Hash20{}
}

// String returns the checksum in hex.
func (h Hash20) String() string {
	return hex.EncodeToString(h[:])
}
