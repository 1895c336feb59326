package castree

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectID(t *testing.T) {
	t.Parallel()

	t.Run("from bytes", func(t *testing.T) {
		t.Parallel()
		id := ObjectIDFromBytes([]byte{0xde, 0xad, 0xbe, 0xef})
		assert.Equal(t, "deadbeef", id.String())
		assert.Equal(t, 4, id.Len())
		assert.False(t, id.IsEmpty())
	})

	t.Run("from hex", func(t *testing.T) {
		t.Parallel()
		id, err := ObjectIDFromHex("deadbeef")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, id.Bytes())
	})

	t.Run("bad hex", func(t *testing.T) {
		t.Parallel()
		_, err := ObjectIDFromHex("not-hex")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, ObjectID{}.IsEmpty())
		assert.Equal(t, 0, ObjectID{}.Len())
	})

	t.Run("comparable", func(t *testing.T) {
		t.Parallel()
		a := ObjectIDFromBytes([]byte{0x01})
		b := ObjectIDFromBytes([]byte{0x01})
		assert.Equal(t, a, b)
	})
}

func TestDigestBridge(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		dgst := digest.FromBytes([]byte("hello"))

		id, err := IDFromDigest(dgst)
		require.NoError(t, err)
		assert.Equal(t, 32, id.Len())
		assert.Equal(t, dgst.Encoded(), id.String())

		back, err := DigestFromID(id)
		require.NoError(t, err)
		assert.Equal(t, dgst, back)
	})

	t.Run("non-sha256 digest rejected", func(t *testing.T) {
		t.Parallel()
		dgst := digest.SHA512.FromBytes([]byte("hello"))
		_, err := IDFromDigest(dgst)
		assert.ErrorIs(t, err, ErrUnsupportedDigest)
	})

	t.Run("malformed digest rejected", func(t *testing.T) {
		t.Parallel()
		_, err := IDFromDigest(digest.Digest("sha256:nothex"))
		assert.Error(t, err)
	})

	t.Run("wrong id length rejected", func(t *testing.T) {
		t.Parallel()
		_, err := DigestFromID(ObjectIDFromBytes([]byte{0x01, 0x02}))
		assert.ErrorIs(t, err, ErrUnsupportedDigest)
	})
}
