//go:build !windows

package platform

import "os"

// NativeSymlinks reports whether the target platform represents symbolic
// links as a distinct file mode. When false, symlinks collapse to regular
// files in the tree entry model.
const NativeSymlinks = true

// WriteSymlink creates a symbolic link at name pointing at target.
func WriteSymlink(root *os.Root, name string, target []byte) error {
	return root.Symlink(string(target), name)
}
