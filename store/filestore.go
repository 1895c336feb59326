package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"
)

// zstdMagic is the frame header Get uses to recognize compressed objects,
// letting a store read blobs written with either compression setting.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileStore is an on-disk content-addressed store.
//
// Objects live under root as blobs/sha256/<xx>/<hex>, fanned out on the
// first two hex digits. Writes are atomic (temp file plus rename) and
// optionally zstd-compressed; reads verify the digest before returning.
type FileStore struct {
	root     string
	enc      *zstd.Encoder // nil when compression is off
	dec      *zstd.Decoder
	logger   *slog.Logger
	getGroup singleflight.Group
}

var _ Store = (*FileStore)(nil)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*fileStoreConfig)

type fileStoreConfig struct {
	compression bool
	logger      *slog.Logger
}

// WithCompression enables zstd compression of stored objects.
// Previously written objects remain readable either way.
func WithCompression(enabled bool) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.compression = enabled
	}
}

// WithLogger sets the logger for store operations. Logging is off by
// default.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.logger = logger
	}
}

// NewFileStore opens (creating if needed) a store rooted at root.
func NewFileStore(root string, opts ...FileStoreOption) (*FileStore, error) {
	cfg := fileStoreConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(filepath.Join(root, "blobs", digest.SHA256.String()), 0o750); err != nil {
		return nil, fmt.Errorf("create store layout: %w", err)
	}

	s := &FileStore{root: root, logger: cfg.logger}

	var err error
	if cfg.compression {
		s.enc, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
	}
	s.dec, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		if s.enc != nil {
			s.enc.Close()
		}
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return s, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (s *FileStore) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// blobPath returns the on-disk path for a digest.
func (s *FileStore) blobPath(dgst digest.Digest) string {
	hex := dgst.Encoded()
	return filepath.Join(s.root, "blobs", dgst.Algorithm().String(), hex[:2], hex)
}

// Put implements Store.
func (s *FileStore) Put(ctx context.Context, data []byte) (digest.Digest, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dgst := digest.FromBytes(data)
	path := s.blobPath(dgst)
	if _, err := os.Stat(path); err == nil {
		// An existing blob only satisfies the Put if it still verifies;
		// otherwise fall through and rewrite it.
		if _, err := s.read(dgst); err == nil {
			return dgst, nil
		}
		s.log().Warn("rewriting unreadable object", "digest", dgst.String())
	}

	stored := data
	if s.enc != nil {
		stored = s.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create fan-out directory: %w", err)
	}
	if err := writeFileAtomic(path, stored); err != nil {
		return "", fmt.Errorf("write object %s: %w", dgst, err)
	}

	s.log().Debug("stored object", "digest", dgst.String(), "size", len(data), "stored_size", len(stored))
	return dgst, nil
}

// Get implements Store. Concurrent reads of the same digest are
// deduplicated; the returned slice is shared and must not be modified.
func (s *FileStore) Get(ctx context.Context, dgst digest.Digest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dgst.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid digest %q", ErrNotFound, dgst)
	}

	result, err, _ := s.getGroup.Do(dgst.String(), func() (any, error) {
		return s.read(dgst)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// read loads, decompresses if needed, and verifies one object.
func (s *FileStore) read(dgst digest.Digest) ([]byte, error) {
	stored, err := os.ReadFile(s.blobPath(dgst))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dgst)
		}
		return nil, fmt.Errorf("read object %s: %w", dgst, err)
	}

	// Uncompressed objects verify directly. Anything else must be a zstd
	// frame that decompresses to matching content.
	if digest.FromBytes(stored) == dgst {
		return stored, nil
	}
	if !bytes.HasPrefix(stored, zstdMagic) {
		s.log().Warn("object failed verification", "digest", dgst.String())
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, dgst)
	}

	data, err := s.dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, dgst, err)
	}
	if digest.FromBytes(data) != dgst {
		s.log().Warn("object failed verification", "digest", dgst.String())
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, dgst)
	}
	return data, nil
}

// Has implements Store.
func (s *FileStore) Has(ctx context.Context, dgst digest.Digest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := dgst.Validate(); err != nil {
		return false, nil
	}
	if _, err := os.Stat(s.blobPath(dgst)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	if s.enc != nil {
		s.enc.Close()
		s.enc = nil
	}
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
	return nil
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring a reader never observes a partial object.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".castree-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
