//go:build windows

package platform

import "os"

// NativeSymlinks reports whether the target platform represents symbolic
// links as a distinct file mode. When false, symlinks collapse to regular
// files in the tree entry model.
const NativeSymlinks = false

// WriteSymlink writes the link target as a regular file. Creating real
// symlinks on Windows requires elevated privileges, so materialized trees
// follow the same narrowing as the type/mode mapping: the entry becomes an
// executable regular file whose content is the target path.
func WriteSymlink(root *os.Root, name string, target []byte) error {
	return root.WriteFile(name, target, 0o755)
}
