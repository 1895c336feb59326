package castree

import "log/slog"

// SnapshotOption configures a Snapshot call.
type SnapshotOption func(*snapshotConfig)

// SnapshotProgressFunc receives the path just imported and the running file
// count.
type SnapshotProgressFunc func(path string, files int)

type snapshotConfig struct {
	checksums bool
	maxFiles  int
	logger    *slog.Logger
	progress  SnapshotProgressFunc
}

// WithContentChecksums enables SHA-1 content checksums on file and symlink
// entries. Off by default because it doubles the hashing work per file.
func WithContentChecksums(enabled bool) SnapshotOption {
	return func(c *snapshotConfig) {
		c.checksums = enabled
	}
}

// WithMaxFiles limits the number of non-directory entries a snapshot may
// contain (default DefaultMaxFiles). Set to 0 to disable the limit.
func WithMaxFiles(n int) SnapshotOption {
	return func(c *snapshotConfig) {
		c.maxFiles = n
	}
}

// WithSnapshotLogger sets the logger for snapshot operations.
func WithSnapshotLogger(logger *slog.Logger) SnapshotOption {
	return func(c *snapshotConfig) {
		c.logger = logger
	}
}

// WithSnapshotProgress sets a callback invoked after each imported entry.
func WithSnapshotProgress(fn SnapshotProgressFunc) SnapshotOption {
	return func(c *snapshotConfig) {
		c.progress = fn
	}
}
