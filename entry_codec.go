package castree

import (
	"encoding/binary"
	"fmt"
)

// Fixed field widths of the entry wire format.
const (
	tagWidth      = 1
	lenWidth      = 2
	sizeWidth     = 8
	checksumWidth = Hash20Len
)

// SerializedSize returns the exact number of bytes AppendBinary will
// produce for e, enabling pre-allocation.
func (e TreeEntry) SerializedSize() int {
	return tagWidth + lenWidth + e.id.Len() + lenWidth + e.name.Len() + sizeWidth + checksumWidth
}

// AppendBinary appends the entry's canonical encoding to b and returns the
// extended buffer, implementing [encoding.BinaryAppender].
//
// The layout, with all integers little-endian, is:
//
//	1 byte   type tag (TreeEntryType ordinal)
//	2 bytes  hash length
//	n bytes  hash
//	2 bytes  name length
//	n bytes  name (not NUL-terminated)
//	8 bytes  size, or NoSize when unknown
//	20 bytes content checksum, or all zero when unknown
//
// This layout is the on-disk contract and must not change. Optionality is
// encoded through the reserved sentinels rather than presence flags;
// switching to flag bytes would break every persisted tree.
//
// A hash or name longer than the 16-bit length prefix is rejected rather
// than truncated; entries built through NewTreeEntry cannot trip this.
func (e TreeEntry) AppendBinary(b []byte) ([]byte, error) {
	if e.id.Len() > MaxHashLen {
		return nil, fmt.Errorf("%w: hash is %d bytes", ErrFieldTooLong, e.id.Len())
	}
	if e.name.Len() > MaxNameLen {
		return nil, fmt.Errorf("%w: name is %d bytes", ErrFieldTooLong, e.name.Len())
	}

	b = append(b, byte(e.typ))
	b = binary.LittleEndian.AppendUint16(b, uint16(e.id.Len()))
	b = append(b, e.id.id...)
	b = binary.LittleEndian.AppendUint16(b, uint16(e.name.Len()))
	b = append(b, e.name.name...)
	b = binary.LittleEndian.AppendUint64(b, e.size)
	b = append(b, e.checksum[:]...)
	return b, nil
}

// MarshalBinary returns the entry's canonical encoding, implementing
// [encoding.BinaryMarshaler].
func (e TreeEntry) MarshalBinary() ([]byte, error) {
	return e.AppendBinary(make([]byte, 0, e.SerializedSize()))
}

// DecodeEntry reads one entry from the front of data and returns it along
// with the remaining bytes.
//
// Decoding is fail-fast: before each field is read, the remaining length is
// checked, and a buffer that ends early fails at the first short field with
// an error wrapping ErrTruncated that names the field and the have/need
// counts. A decoder can therefore never read past the end of data.
//
// A type tag outside the closed enumeration fails with ErrUnknownEntryType.
// Encodings are produced only by this package, so an unknown tag always
// means corruption; rejecting it keeps a damaged byte from being
// reinterpreted as a live entry.
//
// Decoded names are opaque bytes and are not validated as path components;
// call [PathComponent.Validate] before using one against a filesystem.
func DecodeEntry(data []byte) (TreeEntry, []byte, error) {
	if len(data) < tagWidth {
		return TreeEntry{}, nil, shortRead("entry type", len(data), tagWidth)
	}
	tag := data[0]
	data = data[tagWidth:]
	if !TreeEntryType(tag).valid() {
		return TreeEntry{}, nil, fmt.Errorf("%w: tag %d", ErrUnknownEntryType, tag)
	}

	if len(data) < lenWidth {
		return TreeEntry{}, nil, shortRead("hash length", len(data), lenWidth)
	}
	hashLen := int(binary.LittleEndian.Uint16(data))
	data = data[lenWidth:]

	if len(data) < hashLen {
		return TreeEntry{}, nil, shortRead("hash", len(data), hashLen)
	}
	id := ObjectIDFromBytes(data[:hashLen])
	data = data[hashLen:]

	if len(data) < lenWidth {
		return TreeEntry{}, nil, shortRead("name length", len(data), lenWidth)
	}
	nameLen := int(binary.LittleEndian.Uint16(data))
	data = data[lenWidth:]

	if len(data) < nameLen {
		return TreeEntry{}, nil, shortRead("name", len(data), nameLen)
	}
	name := RawPathComponent(data[:nameLen])
	data = data[nameLen:]

	if len(data) < sizeWidth {
		return TreeEntry{}, nil, shortRead("size", len(data), sizeWidth)
	}
	size := binary.LittleEndian.Uint64(data)
	data = data[sizeWidth:]

	if len(data) < checksumWidth {
		return TreeEntry{}, nil, shortRead("content checksum", len(data), checksumWidth)
	}
	var checksum Hash20
	copy(checksum[:], data)
	data = data[checksumWidth:]

	e := TreeEntry{
		id:       id,
		name:     name,
		typ:      TreeEntryType(tag),
		size:     size,
		checksum: checksum,
	}
	return e, data, nil
}

// shortRead builds the diagnostic for a field that extends past the buffer.
func shortRead(field string, have, need int) error {
	return fmt.Errorf("%w: %s: have %d bytes, need %d", ErrTruncated, field, have, need)
}
