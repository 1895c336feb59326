package castree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/castree/castree/internal/platform"
	"github.com/castree/castree/store"
)

// Materialize recreates the snapshot rooted at rootID under destDir.
//
// Directories, regular files, executables, and symlinks are written with
// the permissions ModeFromType assigns their types. On platforms without
// native symlink support, symlink entries become executable regular files
// containing the target path, matching the type/mode narrowing.
//
// Existing files are skipped unless WithOverwrite is set. File writes are
// atomic (temp file plus rename), and decoded entry names are validated
// before they touch the filesystem, so a corrupt or hostile store cannot
// escape destDir.
func Materialize(ctx context.Context, st store.Store, rootID ObjectID, destDir string, opts ...MaterializeOption) error {
	cfg := materializeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return err
	}
	defer root.Close()

	m := &materializer{st: st, cfg: cfg, root: root}
	m.log().Info("materializing snapshot", "root", rootID.String(), "dest", destDir)
	return m.materializeTree(ctx, rootID, ".")
}

// materializer holds state for one Materialize call.
type materializer struct {
	st   store.Store
	cfg  materializeConfig
	root *os.Root
}

// log returns the logger, falling back to a discard logger if nil.
func (m *materializer) log() *slog.Logger {
	if m.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.cfg.logger
}

// fetch reads one object from the store by entry ID.
func (m *materializer) fetch(ctx context.Context, id ObjectID) ([]byte, error) {
	dgst, err := DigestFromID(id)
	if err != nil {
		return nil, err
	}
	return m.st.Get(ctx, dgst)
}

// materializeTree writes the tree id into dir (a slash path inside the
// destination root).
func (m *materializer) materializeTree(ctx context.Context, id ObjectID, dir string) error {
	encoded, err := m.fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch tree %s: %w", dir, err)
	}
	tree, err := DecodeTree(encoded)
	if err != nil {
		return fmt.Errorf("decode tree %s: %w", dir, err)
	}

	for entry := range tree.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Names come off the wire unvalidated.
		if err := entry.Name().Validate(); err != nil {
			return fmt.Errorf("materialize %s: %w", dir, err)
		}
		if err := m.materializeEntry(ctx, entry, path.Join(dir, entry.Name().String())); err != nil {
			return err
		}
	}
	return nil
}

// materializeEntry writes one entry at p.
func (m *materializer) materializeEntry(ctx context.Context, entry TreeEntry, p string) error {
	perm := ModeFromType(entry.Type()).Perm()

	if entry.Type() == EntryTypeTree {
		if err := m.root.Mkdir(p, perm); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
		return m.materializeTree(ctx, entry.ID(), p)
	}

	if info, err := m.root.Lstat(p); err == nil {
		if !m.cfg.overwrite {
			m.log().Debug("skipped existing file", "path", p)
			return nil
		}
		if info.IsDir() {
			return fmt.Errorf("materialize %s: is a directory", p)
		}
		if err := m.root.Remove(p); err != nil {
			return err
		}
	}

	content, err := m.fetch(ctx, entry.ID())
	if err != nil {
		return fmt.Errorf("fetch content %s: %w", p, err)
	}
	if size, ok := entry.Size(); ok && size != uint64(len(content)) {
		m.log().Warn("entry size metadata disagrees with content",
			"path", p, "entry_size", size, "content_size", len(content))
	}

	if entry.Type() == EntryTypeSymlink {
		return platform.WriteSymlink(m.root, p, content)
	}
	return writeFileAtomicRoot(m.root, p, content, perm)
}

// writeFileAtomicRoot writes data to a temp name inside root then renames
// it to p, so a reader never observes a partial file.
func writeFileAtomicRoot(root *os.Root, p string, data []byte, perm fs.FileMode) error {
	tmp := p + ".castree-tmp"
	_ = root.Remove(tmp) // stale temp from an interrupted run

	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		root.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		root.Remove(tmp)
		return err
	}
	if err := root.Rename(tmp, p); err != nil {
		root.Remove(tmp)
		return err
	}
	return nil
}
