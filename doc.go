// Package castree models content-addressed directory trees and their
// canonical binary encoding.
//
// The core value is [TreeEntry]: an immutable (name, hash, type) triple with
// optional size and content-checksum metadata. Entries encode to a fixed
// binary layout that is stable across versions; [Tree] collects the entries
// of a single directory in name order and has its own versioned encoding.
//
// The codec is pure and performs no I/O. Persistence is handled by the
// [github.com/castree/castree/store] package, which stores opaque encoded
// buffers addressed by content digest. [Snapshot] and [Materialize] bridge
// the two: one imports a directory from disk into a store, the other
// recreates it.
//
// All multi-byte integers on the wire are little-endian. See the docs on
// [TreeEntry.AppendBinary] for the exact entry layout.
package castree
