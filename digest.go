package castree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// IDFromDigest converts a store digest to an ObjectID holding its raw bytes.
// Only SHA-256 digests are bridged; the ObjectID form does not carry an
// algorithm name.
func IDFromDigest(d digest.Digest) (ObjectID, error) {
	if err := d.Validate(); err != nil {
		return ObjectID{}, fmt.Errorf("castree: invalid digest %q: %w", d, err)
	}
	if d.Algorithm() != digest.SHA256 {
		return ObjectID{}, fmt.Errorf("%w: %s", ErrUnsupportedDigest, d.Algorithm())
	}
	raw, err := hex.DecodeString(d.Encoded())
	if err != nil {
		return ObjectID{}, fmt.Errorf("castree: invalid digest %q: %w", d, err)
	}
	return ObjectIDFromBytes(raw), nil
}

// DigestFromID converts an ObjectID produced by this package back to a
// SHA-256 store digest.
func DigestFromID(id ObjectID) (digest.Digest, error) {
	if id.Len() != sha256.Size {
		return "", fmt.Errorf("%w: id is %d bytes, want %d", ErrUnsupportedDigest, id.Len(), sha256.Size)
	}
	return digest.NewDigestFromEncoded(digest.SHA256, id.String()), nil
}
