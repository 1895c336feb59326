package castree

import (
	"encoding/binary"
	"fmt"
	"iter"
	"sort"
	"strings"
)

// TreeFormatVersion is the current tree encoding version byte.
const TreeFormatVersion = 1

// treeHeaderSize is the version byte plus the 4-byte entry count.
const treeHeaderSize = 1 + 4

// minEntrySize is the encoding of an entry with empty hash and name, used
// to bound allocation when decoding an untrusted count.
const minEntrySize = tagWidth + 2*lenWidth + sizeWidth + checksumWidth

// Tree is an immutable, name-sorted collection of the entries of a single
// directory. Like TreeEntry it is safe for concurrent reads without
// synchronization.
type Tree struct {
	entries []TreeEntry
}

// NewTree builds a tree from entries, sorting them by name bytes.
// Two entries with the same name fail with ErrDuplicateName.
func NewTree(entries []TreeEntry) (Tree, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].name.name < sorted[j].name.name
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].name == sorted[i-1].name {
			return Tree{}, fmt.Errorf("%w: %q", ErrDuplicateName, sorted[i].name.String())
		}
	}
	return Tree{entries: sorted}, nil
}

// Len returns the number of entries.
func (t Tree) Len() int {
	return len(t.entries)
}

// Lookup returns the entry named name, if present.
func (t Tree) Lookup(name PathComponent) (TreeEntry, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].name.name >= name.name
	})
	if i < len(t.entries) && t.entries[i].name == name {
		return t.entries[i], true
	}
	return TreeEntry{}, false
}

// At returns the entry at index i in name order.
func (t Tree) At(i int) TreeEntry {
	return t.entries[i]
}

// Entries returns an iterator over the entries in name order.
func (t Tree) Entries() iter.Seq[TreeEntry] {
	return func(yield func(TreeEntry) bool) {
		for _, e := range t.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// SerializedSize returns the exact number of bytes AppendBinary will
// produce for t.
func (t Tree) SerializedSize() int {
	n := treeHeaderSize
	for _, e := range t.entries {
		n += e.SerializedSize()
	}
	return n
}

// AppendBinary appends the tree's encoding to b: a 1-byte format version,
// a 4-byte little-endian entry count, then each entry's encoding in name
// order. It implements [encoding.BinaryAppender].
func (t Tree) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, TreeFormatVersion)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(t.entries)))
	for _, e := range t.entries {
		var err error
		b, err = e.AppendBinary(b)
		if err != nil {
			return nil, fmt.Errorf("encode entry %q: %w", e.name.String(), err)
		}
	}
	return b, nil
}

// MarshalBinary returns the tree's encoding, implementing
// [encoding.BinaryMarshaler].
func (t Tree) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(make([]byte, 0, t.SerializedSize()))
}

// DecodeTree decodes a complete tree encoding.
//
// It applies the same fail-fast truncation discipline as DecodeEntry and
// additionally rejects unknown format versions, unsorted or duplicate
// names, and trailing bytes after the declared entries. A tree blob is a
// complete stored object, so leftover bytes always mean corruption.
func DecodeTree(data []byte) (Tree, error) {
	if len(data) < 1 {
		return Tree{}, shortRead("tree version", len(data), 1)
	}
	if data[0] != TreeFormatVersion {
		return Tree{}, fmt.Errorf("%w: %d", ErrUnsupportedTreeVersion, data[0])
	}
	data = data[1:]

	if len(data) < 4 {
		return Tree{}, shortRead("entry count", len(data), 4)
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]

	// The count is untrusted and may exceed the platform's int range, so
	// clamp in 64 bits before it ever becomes an allocation size.
	capHint := len(data)/minEntrySize + 1
	if c := uint64(count); c < uint64(capHint) {
		capHint = int(c)
	}

	entries := make([]TreeEntry, 0, capHint)
	for i := uint32(0); i < count; i++ {
		e, rest, err := DecodeEntry(data)
		if err != nil {
			return Tree{}, fmt.Errorf("decode entry %d of %d: %w", i, count, err)
		}
		if n := len(entries); n > 0 && strings.Compare(entries[n-1].name.name, e.name.name) >= 0 {
			if entries[n-1].name == e.name {
				return Tree{}, fmt.Errorf("%w: %q", ErrDuplicateName, e.name.String())
			}
			return Tree{}, fmt.Errorf("castree: tree entries out of order at %q", e.name.String())
		}
		entries = append(entries, e)
		data = rest
	}
	if len(data) != 0 {
		return Tree{}, fmt.Errorf("castree: %d trailing bytes after tree entries", len(data))
	}
	return Tree{entries: entries}, nil
}
