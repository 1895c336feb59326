package castree

import (
	"encoding/hex"
	"fmt"
)

// ObjectID is the content-addressing identifier of a stored object. It is
// an opaque, variable-length byte string, immutable and comparable with ==.
//
// IDs produced by this package are raw SHA-256 digest bytes, but the entry
// codec treats any length up to MaxHashLen as opaque.
type ObjectID struct {
	id string
}

// ObjectIDFromBytes copies b into an ObjectID.
func ObjectIDFromBytes(b []byte) ObjectID {
	return ObjectID{id: string(b)}
}

// ObjectIDFromHex parses a hex-encoded ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ObjectID{}, fmt.Errorf("castree: parse object id: %w", err)
	}
	return ObjectID{id: string(b)}, nil
}

// Bytes returns a copy of the identifier's bytes.
func (o ObjectID) Bytes() []byte {
	return []byte(o.id)
}

// Len returns the identifier's byte length.
func (o ObjectID) Len() int {
	return len(o.id)
}

// IsEmpty reports whether the identifier has zero length.
func (o ObjectID) IsEmpty() bool {
	return len(o.id) == 0
}

// String returns the identifier in hex.
func (o ObjectID) String() string {
	return hex.EncodeToString([]byte(o.id))
}
