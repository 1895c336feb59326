package castree

import (
	"fmt"
	"io/fs"

	"github.com/castree/castree/internal/platform"
)

// TreeEntryType classifies what a tree entry points at.
//
// The enumeration is closed: the four variants below are the only legal
// values, and their ordinals are the wire tags used by the entry codec.
// Neither may be reordered.
type TreeEntryType uint8

const (
	// EntryTypeTree references another tree (a subdirectory).
	EntryTypeTree TreeEntryType = iota

	// EntryTypeRegularFile references ordinary file content.
	EntryTypeRegularFile

	// EntryTypeExecutableFile references file content with the owner
	// execute bit set.
	EntryTypeExecutableFile

	// EntryTypeSymlink references a symbolic link target. On platforms
	// without native symlink support it is narrowed to an executable
	// regular file; see ModeFromType.
	EntryTypeSymlink
)

// valid reports whether t is one of the closed enumeration's variants.
func (t TreeEntryType) valid() bool {
	return t <= EntryTypeSymlink
}

// String returns the variant name, or a numeric form for values outside
// the enumeration.
func (t TreeEntryType) String() string {
	switch t {
	case EntryTypeTree:
		return "Tree"
	case EntryTypeRegularFile:
		return "RegularFile"
	case EntryTypeExecutableFile:
		return "ExecutableFile"
	case EntryTypeSymlink:
		return "Symlink"
	}
	return fmt.Sprintf("TreeEntryType(%d)", uint8(t))
}

// logChar returns the single-character code used in diagnostic output.
func (t TreeEntryType) logChar() byte {
	switch t {
	case EntryTypeTree:
		return 'd'
	case EntryTypeRegularFile:
		return 'f'
	case EntryTypeExecutableFile:
		return 'x'
	case EntryTypeSymlink:
		return 'l'
	}
	return '?'
}

// ModeFromType returns the file mode equivalent of an entry type.
//
// On platforms without native symlink support, EntryTypeSymlink maps to the
// same mode as EntryTypeExecutableFile. This narrowing is permanent: trees
// created elsewhere remain readable, but the symlink distinction is not
// representable in modes on such platforms.
//
// ModeFromType panics on a value outside the enumeration; that indicates a
// bug in the caller, not bad data, and must never be reachable from decoded
// input (the codec rejects unknown tags).
func ModeFromType(t TreeEntryType) fs.FileMode {
	if platform.NativeSymlinks {
		return modeFromTypeNative(t)
	}
	return modeFromTypeNarrowed(t)
}

// TypeFromMode classifies a file mode, reporting false for modes that have
// no representation in the entry model (devices, sockets, named pipes).
//
// On platforms without native symlink support, every regular file maps to
// EntryTypeRegularFile: the executable and symlink distinctions are not
// recoverable from mode bits there.
func TypeFromMode(mode fs.FileMode) (TreeEntryType, bool) {
	if platform.NativeSymlinks {
		return typeFromModeNative(mode)
	}
	return typeFromModeNarrowed(mode)
}

// modeFromTypeNative is the mapping table for platforms where symlinks are
// a distinct mode. Exposed separately from ModeFromType so both tables are
// testable on any host.
func modeFromTypeNative(t TreeEntryType) fs.FileMode {
	switch t {
	case EntryTypeTree:
		return fs.ModeDir | 0o755
	case EntryTypeRegularFile:
		return 0o644
	case EntryTypeExecutableFile:
		return 0o755
	case EntryTypeSymlink:
		return fs.ModeSymlink | 0o755
	}
	panic(fmt.Sprintf("castree: illegal tree entry type %d", uint8(t)))
}

// modeFromTypeNarrowed is the mapping table for platforms without native
// symlinks: symlinks take the executable-file mode.
func modeFromTypeNarrowed(t TreeEntryType) fs.FileMode {
	if t == EntryTypeSymlink {
		return 0o755
	}
	return modeFromTypeNative(t)
}

func typeFromModeNative(mode fs.FileMode) (TreeEntryType, bool) {
	switch {
	case mode.IsRegular():
		if mode&0o100 != 0 {
			return EntryTypeExecutableFile, true
		}
		return EntryTypeRegularFile, true
	case mode&fs.ModeSymlink != 0:
		return EntryTypeSymlink, true
	case mode.IsDir():
		return EntryTypeTree, true
	}
	return 0, false
}

func typeFromModeNarrowed(mode fs.FileMode) (TreeEntryType, bool) {
	switch {
	case mode.IsRegular():
		return EntryTypeRegularFile, true
	case mode.IsDir():
		return EntryTypeTree, true
	}
	return 0, false
}
