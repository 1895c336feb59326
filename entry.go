package castree

import (
	"fmt"
	"math"
)

// Wire limits and sentinels.
const (
	// MaxHashLen is the largest hash the 16-bit wire length prefix can carry.
	MaxHashLen = math.MaxUint16

	// MaxNameLen is the largest name the 16-bit wire length prefix can carry.
	MaxNameLen = math.MaxUint16

	// NoSize is the reserved 64-bit sentinel meaning "size unknown" on the
	// wire. A real size must never equal it; WithSize rejects the value.
	NoSize uint64 = math.MaxUint64
)

// TreeEntry is one named reference inside a tree: a (name, hash, type)
// triple plus optional size and content-checksum metadata.
//
// Entries are immutable once constructed and therefore safe to share across
// goroutines without synchronization. Identity is defined by (hash, type,
// name) only; size and checksum are metadata, not identity.
type TreeEntry struct {
	id       ObjectID
	name     PathComponent
	typ      TreeEntryType
	size     uint64 // NoSize when absent
	checksum Hash20 // zero when absent
}

// EntryOption configures optional TreeEntry metadata at construction.
type EntryOption func(*TreeEntry) error

// WithSize records the byte count of the referenced content.
func WithSize(n uint64) EntryOption {
	return func(e *TreeEntry) error {
		if n == NoSize {
			return fmt.Errorf("%w: size %d is the absent-size sentinel", ErrReservedValue, n)
		}
		e.size = n
		return nil
	}
}

// WithContentChecksum records a secondary checksum of the referenced content.
func WithContentChecksum(h Hash20) EntryOption {
	return func(e *TreeEntry) error {
		if h.IsZero() {
			return fmt.Errorf("%w: zero checksum means absent", ErrReservedValue)
		}
		e.checksum = h
		return nil
	}
}

// NewTreeEntry builds an immutable entry referencing id under name.
//
// The hash and name must each fit the wire format's 16-bit length prefix;
// oversized values are rejected here rather than silently truncated during
// encoding.
func NewTreeEntry(id ObjectID, name PathComponent, typ TreeEntryType, opts ...EntryOption) (TreeEntry, error) {
	if !typ.valid() {
		return TreeEntry{}, fmt.Errorf("%w: %d", ErrUnknownEntryType, uint8(typ))
	}
	if id.Len() > MaxHashLen {
		return TreeEntry{}, fmt.Errorf("%w: hash is %d bytes", ErrFieldTooLong, id.Len())
	}
	if name.Len() > MaxNameLen {
		return TreeEntry{}, fmt.Errorf("%w: name is %d bytes", ErrFieldTooLong, name.Len())
	}

	e := TreeEntry{id: id, name: name, typ: typ, size: NoSize}
	for _, opt := range opts {
		if err := opt(&e); err != nil {
			return TreeEntry{}, err
		}
	}
	return e, nil
}

// ID returns the content identifier of the referenced object.
func (e TreeEntry) ID() ObjectID {
	return e.id
}

// Name returns the entry's name.
func (e TreeEntry) Name() PathComponent {
	return e.name
}

// Type returns the entry's classification.
func (e TreeEntry) Type() TreeEntryType {
	return e.typ
}

// Size returns the referenced content's byte count, if known.
func (e TreeEntry) Size() (uint64, bool) {
	if e.size == NoSize {
		return 0, false
	}
	return e.size, true
}

// ContentChecksum returns the secondary content checksum, if known.
func (e TreeEntry) ContentChecksum() (Hash20, bool) {
	if e.checksum.IsZero() {
		return Hash20{}, false
	}
	return e.checksum, true
}

// Equal reports whether two entries are the same reference: equal hash,
// type, and name. Size and content checksum are deliberately excluded.
func (e TreeEntry) Equal(other TreeEntry) bool {
	return e.id == other.id && e.typ == other.typ && e.name == other.name
}

// LogString renders the entry for diagnostics as "(name, hash, c)" where c
// is a single type character (d, f, x, or l). The output is for logs only
// and is never parsed back.
func (e TreeEntry) LogString() string {
	return fmt.Sprintf("(%s, %s, %c)", e.name, e.id, e.typ.logChar())
}

// IndirectSizeBytes reports the heap footprint of the entry's name storage,
// for memory accounting of in-memory trees.
func (e TreeEntry) IndirectSizeBytes() int {
	return len(e.name.name)
}
