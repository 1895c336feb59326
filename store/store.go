// Package store provides content-addressed storage for encoded trees and
// file content.
//
// A store holds opaque byte blobs addressed by their SHA-256 digest. It
// knows nothing about the tree encoding; the castree package decodes what a
// store returns and encodes what it persists.
package store

import (
	"context"

	"github.com/opencontainers/go-digest"
)

// Store persists opaque byte blobs addressed by content digest.
//
// Implementations must verify content against its digest on read and return
// ErrCorrupted on mismatch, so callers can treat returned bytes as
// authentic.
type Store interface {
	// Put writes data and returns its digest. Storing the same content
	// twice is idempotent.
	Put(ctx context.Context, data []byte) (digest.Digest, error)

	// Get returns the content addressed by dgst. The returned slice is
	// shared and must not be modified. Missing objects fail with
	// ErrNotFound.
	Get(ctx context.Context, dgst digest.Digest) ([]byte, error)

	// Has reports whether dgst is present without reading its content.
	Has(ctx context.Context, dgst digest.Digest) (bool, error)

	// Close releases resources held by the store.
	Close() error
}
