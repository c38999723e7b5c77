// Package patchstore persists BSDIFF40 patches as content-addressed OCI
// artifacts, so a patch produced by this module can be pushed to or pulled
// from any OCI-compatible registry via oras.land/oras-go/v2, the way a
// delta-distribution service would version and fetch them by tag.
package patchstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
)

// ArtifactType identifies a manifest whose sole layer is a BSDIFF40 patch.
const ArtifactType = "application/vnd.qbsdiff.patch.v1"

// LayerMediaType identifies the patch bytes layer itself.
const LayerMediaType = "application/vnd.qbsdiff.patch.v1+bsdiff40"

// Store is a tag-addressed collection of patches, backed by an oras.Target.
// The zero value is not usable; construct with New or NewWithTarget.
type Store struct {
	target oras.Target
}

// New returns a Store backed by an in-process memory target, useful for
// tests and for staging patches before a registry push.
func New() *Store {
	return &Store{target: memory.New()}
}

// NewWithTarget returns a Store backed by an arbitrary oras.Target, such as
// a remote registry repository opened via oras.land/oras-go/v2/registry/remote.
func NewWithTarget(target oras.Target) *Store {
	return &Store{target: target}
}

// Put pushes patch as a single-layer OCI artifact and tags its manifest,
// returning the manifest descriptor.
func (s *Store) Put(ctx context.Context, tag string, patch []byte) (ocispec.Descriptor, error) {
	layer := ocispec.Descriptor{
		MediaType: LayerMediaType,
		Digest:    digest.FromBytes(patch),
		Size:      int64(len(patch)),
	}
	if err := s.target.Push(ctx, layer, bytes.NewReader(patch)); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("patchstore: push patch layer: %w", err)
	}

	manifest, err := oras.PackManifest(ctx, s.target, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{layer},
	})
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("patchstore: pack manifest: %w", err)
	}
	if err := s.target.Tag(ctx, manifest, tag); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("patchstore: tag manifest %q: %w", tag, err)
	}
	return manifest, nil
}

// Get resolves tag to its manifest, fetches it, and returns the bytes of
// its sole patch layer.
func (s *Store) Get(ctx context.Context, tag string) ([]byte, error) {
	manifestDesc, err := s.target.Resolve(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("patchstore: resolve tag %q: %w", tag, err)
	}
	manifestBytes, err := content.FetchAll(ctx, s.target, manifestDesc)
	if err != nil {
		return nil, fmt.Errorf("patchstore: fetch manifest: %w", err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("patchstore: decode manifest: %w", err)
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("patchstore: expected exactly one layer, got %d", len(manifest.Layers))
	}

	patch, err := content.FetchAll(ctx, s.target, manifest.Layers[0])
	if err != nil {
		return nil, fmt.Errorf("patchstore: fetch patch layer: %w", err)
	}
	return patch, nil
}
