//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castree/castree"
	"github.com/castree/castree/registry"
)

func TestPushPull_Basic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registryAddr := getRegistry(t)
	client := newTestClient(t)

	dir := t.TempDir()
	createTestFiles(t, dir, smallSnapshot)

	src := newTestStore(t)
	rootID, err := castree.Snapshot(ctx, src, dir)
	require.NoError(t, err, "Snapshot")

	ref := testRef(registryAddr, "push-pull-basic")
	_, err = client.Push(ctx, src, rootID, ref)
	require.NoError(t, err, "Push")

	dst := newTestStore(t)
	pulledID, err := client.Pull(ctx, dst, ref)
	require.NoError(t, err, "Pull")
	assert.Equal(t, rootID, pulledID, "root id should survive the round trip")

	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, castree.Materialize(ctx, dst, pulledID, out), "Materialize")
	for path, content := range smallSnapshot {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(path)))
		require.NoError(t, err, "read %s", path)
		assert.Equal(t, content, data, "content of %s", path)
	}
}

func TestPush_IncrementalSecondSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registryAddr := getRegistry(t)
	client := newTestClient(t)

	dir := t.TempDir()
	createTestFiles(t, dir, smallSnapshot)
	st := newTestStore(t)

	rootV1, err := castree.Snapshot(ctx, st, dir)
	require.NoError(t, err)
	_, err = client.Push(ctx, st, rootV1, testRefWithTag(registryAddr, "push-incremental", "v1"))
	require.NoError(t, err, "push v1")

	// Change one file; the second push reuses every unchanged object.
	createTestFiles(t, dir, map[string][]byte{"src/main.rs": []byte("fn main() { changed() }\n")})
	rootV2, err := castree.Snapshot(ctx, st, dir)
	require.NoError(t, err)
	require.NotEqual(t, rootV1, rootV2)

	_, err = client.Push(ctx, st, rootV2, testRefWithTag(registryAddr, "push-incremental", "v2"))
	require.NoError(t, err, "push v2")

	dst := newTestStore(t)
	pulled, err := client.Pull(ctx, dst, testRefWithTag(registryAddr, "push-incremental", "v2"))
	require.NoError(t, err)
	assert.Equal(t, rootV2, pulled)
}

func TestPush_AdditionalTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registryAddr := getRegistry(t)
	client := newTestClient(t)

	dir := t.TempDir()
	createTestFiles(t, dir, smallSnapshot)
	st := newTestStore(t)

	rootID, err := castree.Snapshot(ctx, st, dir)
	require.NoError(t, err)

	_, err = client.Push(ctx, st, rootID, testRefWithTag(registryAddr, "push-tags", "v1"),
		registry.WithTags("latest"))
	require.NoError(t, err, "Push")

	dst := newTestStore(t)
	pulled, err := client.Pull(ctx, dst, testRefWithTag(registryAddr, "push-tags", "latest"))
	require.NoError(t, err, "Pull by additional tag")
	assert.Equal(t, rootID, pulled)
}

func TestPull_UnknownTag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registryAddr := getRegistry(t)
	client := newTestClient(t)

	_, err := client.Pull(ctx, newTestStore(t), testRefWithTag(registryAddr, "pull-unknown", "nope"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
