package castree

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/castree/castree/store"
)

// DefaultMaxFiles is the file count limit used when no WithMaxFiles option
// is set.
const DefaultMaxFiles = 200_000

// Snapshot imports the directory at dir into st and returns the ObjectID of
// its root tree.
//
// File and symlink content is stored as-is; each directory becomes an
// encoded Tree whose entries reference the stored content. Entry types are
// classified with TypeFromMode, so device files, sockets, and pipes are
// skipped (they have no representation in the model). Symbolic links are
// recorded by target, never followed.
//
// Every entry records its content size. SHA-1 content checksums are off by
// default; enable them with WithContentChecksums.
//
// The context cancels long imports between files.
func Snapshot(ctx context.Context, st store.Store, dir string, opts ...SnapshotOption) (ObjectID, error) {
	cfg := snapshotConfig{maxFiles: DefaultMaxFiles}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return ObjectID{}, err
	}
	defer root.Close()

	s := &snapshotter{st: st, cfg: cfg, root: root}
	s.log().Info("snapshotting directory", "dir", dir, "checksums", cfg.checksums)

	id, err := s.snapshotDir(ctx, ".")
	if err != nil {
		return ObjectID{}, err
	}

	s.log().Info("snapshot complete", "root", id.String(), "files", s.files)
	return id, nil
}

// snapshotter holds state for one Snapshot call.
type snapshotter struct {
	st    store.Store
	cfg   snapshotConfig
	root  *os.Root
	files int
}

// log returns the logger, falling back to a discard logger if nil.
func (s *snapshotter) log() *slog.Logger {
	if s.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.cfg.logger
}

// reportProgress invokes the progress callback if one is configured.
func (s *snapshotter) reportProgress(p string) {
	if s.cfg.progress != nil {
		s.cfg.progress(p, s.files)
	}
}

// snapshotDir stores the tree for dir (a slash path relative to the root)
// and returns its ObjectID. Directories are processed depth-first so a tree
// is always stored after everything it references.
func (s *snapshotter) snapshotDir(ctx context.Context, dir string) (ObjectID, error) {
	dirents, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		return ObjectID{}, err
	}

	entries := make([]TreeEntry, 0, len(dirents))
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return ObjectID{}, err
		}

		p := path.Join(dir, d.Name())
		info, err := d.Info()
		if err != nil {
			return ObjectID{}, err
		}

		typ, ok := TypeFromMode(info.Mode())
		if !ok {
			s.log().Debug("skipped unsupported file type", "path", p, "mode", info.Mode().String())
			continue
		}

		name, err := NewPathComponent(d.Name())
		if err != nil {
			return ObjectID{}, fmt.Errorf("snapshot %s: %w", p, err)
		}

		entry, err := s.snapshotEntry(ctx, p, name, typ)
		if err != nil {
			return ObjectID{}, err
		}
		entries = append(entries, entry)
		s.reportProgress(p)
	}

	tree, err := NewTree(entries)
	if err != nil {
		return ObjectID{}, fmt.Errorf("snapshot %s: %w", dir, err)
	}
	encoded, err := tree.MarshalBinary()
	if err != nil {
		return ObjectID{}, fmt.Errorf("snapshot %s: %w", dir, err)
	}
	dgst, err := s.st.Put(ctx, encoded)
	if err != nil {
		return ObjectID{}, fmt.Errorf("store tree %s: %w", dir, err)
	}
	return IDFromDigest(dgst)
}

// snapshotEntry stores one directory member's content and builds its entry.
func (s *snapshotter) snapshotEntry(ctx context.Context, p string, name PathComponent, typ TreeEntryType) (TreeEntry, error) {
	if typ == EntryTypeTree {
		childID, err := s.snapshotDir(ctx, p)
		if err != nil {
			return TreeEntry{}, err
		}
		return NewTreeEntry(childID, name, EntryTypeTree)
	}

	if s.cfg.maxFiles > 0 && s.files >= s.cfg.maxFiles {
		return TreeEntry{}, ErrTooManyFiles
	}
	s.files++

	var content []byte
	if typ == EntryTypeSymlink {
		target, err := s.root.Readlink(p)
		if err != nil {
			return TreeEntry{}, err
		}
		content = []byte(target)
	} else {
		var err error
		content, err = s.root.ReadFile(p)
		if err != nil {
			return TreeEntry{}, err
		}
	}

	dgst, err := s.st.Put(ctx, content)
	if err != nil {
		return TreeEntry{}, fmt.Errorf("store content %s: %w", p, err)
	}
	id, err := IDFromDigest(dgst)
	if err != nil {
		return TreeEntry{}, err
	}

	entryOpts := []EntryOption{WithSize(uint64(len(content)))}
	if s.cfg.checksums {
		sum, err := Hash20FromBytes(sha1Sum(content))
		if err != nil {
			return TreeEntry{}, err
		}
		// An all-zero SHA-1 is the wire's absent marker; no real content
		// hashes to it.
		if !sum.IsZero() {
			entryOpts = append(entryOpts, WithContentChecksum(sum))
		}
	}
	return NewTreeEntry(id, name, typ, entryOpts...)
}

// sha1Sum returns the SHA-1 digest of data as a byte slice.
func sha1Sum(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}
