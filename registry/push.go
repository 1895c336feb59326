package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"

	"github.com/castree/castree"
	"github.com/castree/castree/store"
)

// Push replicates the snapshot rooted at rootID from st to an OCI registry.
//
// Every object reachable from the root tree is pushed as a layer; layers the
// registry already has are skipped, so pushing successive snapshots of the
// same directory only transfers what changed. The ref must include a tag
// (e.g. "registry.com/repo:v1.0.0").
//
// Use WithTags to apply additional tags to the same manifest.
func (c *Client) Push(ctx context.Context, st store.Store, rootID castree.ObjectID, ref string, opts ...PushOption) (ocispec.Descriptor, error) {
	cfg := pushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	parsed, err := parseRef(ref)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	repo, err := c.repository(parsed)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	c.log().Info("pushing snapshot", "ref", ref, "root", rootID.String())
	return pushSnapshot(ctx, repo, st, rootID, parsed.Reference, &cfg)
}

// pushSnapshot pushes a snapshot into any ORAS target. Tests exercise it
// against an in-memory target.
func pushSnapshot(ctx context.Context, dst oras.Target, st store.Store, rootID castree.ObjectID, tag string, cfg *pushConfig) (ocispec.Descriptor, error) {
	rootDigest, err := castree.DigestFromID(rootID)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	// Step 1: push every reachable object as a layer.
	var layers []ocispec.Descriptor
	err = castree.Walk(ctx, st, rootID, func(id castree.ObjectID, _ castree.TreeEntryType) error {
		dgst, err := castree.DigestFromID(id)
		if err != nil {
			return err
		}
		data, err := st.Get(ctx, dgst)
		if err != nil {
			return fmt.Errorf("read object %s: %w", dgst, err)
		}
		desc := ocispec.Descriptor{
			MediaType: MediaTypeObject,
			Digest:    dgst,
			Size:      int64(len(data)),
		}
		if err := pushIfAbsent(ctx, dst, desc, data); err != nil {
			return fmt.Errorf("push object %s: %w", dgst, mapError(err))
		}
		layers = append(layers, desc)
		return nil
	})
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	// Step 2: push the empty config blob required by the OCI spec.
	config := []byte("{}")
	configDesc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeEmptyJSON,
		Digest:    digest.FromBytes(config),
		Size:      int64(len(config)),
	}
	if err := pushIfAbsent(ctx, dst, configDesc, config); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push config: %w", mapError(err))
	}

	// Step 3: build and push the manifest.
	manifest := buildManifest(&configDesc, layers, rootDigest, cfg.annotations)
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("encode manifest: %w", err)
	}
	manifestDesc := ocispec.Descriptor{
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Digest:       digest.FromBytes(manifestBytes),
		Size:         int64(len(manifestBytes)),
		Annotations:  manifest.Annotations,
	}
	if err := pushIfAbsent(ctx, dst, manifestDesc, manifestBytes); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest: %w", mapError(err))
	}

	// Step 4: apply the tag plus any additional tags.
	for _, t := range append([]string{tag}, cfg.tags...) {
		if err := dst.Tag(ctx, manifestDesc, t); err != nil {
			return ocispec.Descriptor{}, fmt.Errorf("tag %q: %w", t, mapError(err))
		}
	}

	return manifestDesc, nil
}

// pushIfAbsent pushes data unless the target already has the descriptor.
func pushIfAbsent(ctx context.Context, dst oras.Target, desc ocispec.Descriptor, data []byte) error {
	exists, err := dst.Exists(ctx, desc)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return dst.Push(ctx, desc, bytes.NewReader(data))
}

// buildManifest creates an OCI manifest for a snapshot.
func buildManifest(configDesc *ocispec.Descriptor, layers []ocispec.Descriptor, rootDigest digest.Digest, customAnnotations map[string]string) ocispec.Manifest {
	annotations := make(map[string]string)
	for k, v := range customAnnotations {
		annotations[k] = v
	}
	annotations[AnnotationRoot] = rootDigest.String()
	if _, ok := annotations[ocispec.AnnotationCreated]; !ok {
		annotations[ocispec.AnnotationCreated] = time.Now().UTC().Format(time.RFC3339)
	}

	return ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       *configDesc,
		Layers:       layers,
		Annotations:  annotations,
	}
}
