package castree

import "errors"

// Sentinel errors for the entry and tree codecs.
var (
	// ErrTruncated is returned when an encoded buffer ends before the field
	// currently being read. The wrapping error names the field and the
	// have/need byte counts.
	ErrTruncated = errors.New("castree: truncated encoding")

	// ErrUnknownEntryType is returned when a type tag is outside the closed
	// enumeration, either at construction or during decoding.
	ErrUnknownEntryType = errors.New("castree: unknown entry type")

	// ErrFieldTooLong is returned when a hash or name exceeds the 16-bit
	// length prefix of the wire format.
	ErrFieldTooLong = errors.New("castree: field too long for 16-bit length prefix")

	// ErrReservedValue is returned when a caller supplies a value the wire
	// format reserves for "absent": the all-bits-set size sentinel or the
	// all-zero content checksum.
	ErrReservedValue = errors.New("castree: value is a reserved wire sentinel")

	// ErrUnsupportedTreeVersion is returned when a tree encoding declares a
	// format version this package does not understand.
	ErrUnsupportedTreeVersion = errors.New("castree: unsupported tree format version")

	// ErrDuplicateName is returned when a tree is built with two entries
	// sharing a name.
	ErrDuplicateName = errors.New("castree: duplicate entry name")

	// ErrInvalidPathComponent is returned when a name contains a path
	// separator or is otherwise not a single well-formed path segment.
	ErrInvalidPathComponent = errors.New("castree: invalid path component")
)

// Sentinel errors for snapshot and materialize operations.
var (
	// ErrTooManyFiles is returned when a snapshot exceeds the configured
	// file count limit.
	ErrTooManyFiles = errors.New("castree: too many files")

	// ErrUnsupportedDigest is returned when an ObjectID or digest cannot be
	// bridged because it does not carry a SHA-256 value.
	ErrUnsupportedDigest = errors.New("castree: unsupported digest algorithm")
)
