package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencontainers/go-digest"
	bolt "go.etcd.io/bbolt"
)

// objectsBucket holds all objects, keyed by canonical digest string.
var objectsBucket = []byte("objects")

// BoltStore is a single-file content-addressed store backed by bbolt.
//
// It trades the FileStore's one-file-per-object layout for a single
// database file, which keeps small-object stores compact and makes the
// whole store one unit to copy or back up.
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

var _ Store = (*BoltStore)(nil)

// BoltStoreOption configures a BoltStore.
type BoltStoreOption func(*BoltStore)

// WithBoltLogger sets the logger for store operations.
func WithBoltLogger(logger *slog.Logger) BoltStoreOption {
	return func(s *BoltStore) {
		s.logger = logger
	}
}

// NewBoltStore opens (creating if needed) a store at the given file path.
func NewBoltStore(path string, opts ...BoltStoreOption) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(objectsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create objects bucket: %w", err)
	}

	s := &BoltStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (s *BoltStore) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Put implements Store.
func (s *BoltStore) Put(ctx context.Context, data []byte) (digest.Digest, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dgst := digest.FromBytes(data)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(objectsBucket)
		if b.Get([]byte(dgst.String())) != nil {
			return nil
		}
		return b.Put([]byte(dgst.String()), data)
	})
	if err != nil {
		return "", fmt.Errorf("write object %s: %w", dgst, err)
	}

	s.log().Debug("stored object", "digest", dgst.String(), "size", len(data))
	return dgst, nil
}

// Get implements Store.
func (s *BoltStore) Get(ctx context.Context, dgst digest.Digest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dgst.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid digest %q", ErrNotFound, dgst)
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(objectsBucket).Get([]byte(dgst.String()))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, dgst)
		}
		// Bolt memory is only valid inside the transaction.
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if digest.FromBytes(data) != dgst {
		s.log().Warn("object failed verification", "digest", dgst.String())
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, dgst)
	}
	return data, nil
}

// Has implements Store.
func (s *BoltStore) Has(ctx context.Context, dgst digest.Digest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := dgst.Validate(); err != nil {
		return false, nil
	}

	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(objectsBucket).Get([]byte(dgst.String())) != nil
		return nil
	})
	return found, err
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
