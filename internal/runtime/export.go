package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/containerd/containerd/v2/core/containers"
	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/images/archive"
	"github.com/containerd/containerd/v2/pkg/rootfs"
	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Filename of the OCI archive produced by Export.
const exportFilename = "image.tar"

// Commits the container's filesystem changes and exports the result as an
// OCI archive to output/image.tar.
//
// The diff between the container's snapshot and its parent becomes a new
// layer on top of the base image. The stored image record is never
// modified: the updated manifest and config are written to the content
// store as ephemeral blobs and referenced only during the export. A content
// lease protects them from garbage collection until the export completes.
func (c *Container) Export(ctx context.Context, output string) error {
	loaded, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	info, err := loaded.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	layer, diffID, err := c.snapshotDiff(ctx, info)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	// Without a lease, containerd's GC scheduler may collect the blobs
	// written by commitLayer before the archive export reads them.
	ctx, done, err := c.client.WithLease(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	defer done(context.Background())

	target, err := c.commitLayer(ctx, info.Image, layer, diffID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	path := filepath.Join(output, exportFilename)
	if err := c.writeArchive(ctx, target, info.Image, path); err != nil {
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	slog.Info("image exported", "path", path)
	return nil
}

// Computes the diff between the container's snapshot and its parent,
// returning the layer descriptor and its diff ID.
func (c *Container) snapshotDiff(ctx context.Context, info containers.Container) (ocispec.Descriptor, digest.Digest, error) {
	layer, err := rootfs.CreateDiff(ctx,
		info.SnapshotKey,
		c.client.SnapshotService(info.Snapshotter),
		c.client.DiffService(),
	)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}

	diffID, err := images.GetDiffID(ctx, c.client.ContentStore(), layer)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}

	return layer, diffID, nil
}

// Appends the committed layer to the base image's manifest and config,
// writing the updated blobs to the content store.
//
// The manifest is resolved for the container's platform, so multi-platform
// base images commit only the layer stack that was actually built on.
// Returns the descriptor of the new manifest.
func (c *Container) commitLayer(ctx context.Context, imageName string, layer ocispec.Descriptor, diffID digest.Digest) (ocispec.Descriptor, error) {
	cs := c.client.ContentStore()

	img, err := c.client.ImageService().Get(ctx, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	manifest, err := images.Manifest(ctx, cs, img.Target, platforms.Only(p))
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	var config ocispec.Image
	if err := readBlob(ctx, cs, manifest.Config, &config); err != nil {
		return ocispec.Descriptor{}, err
	}

	manifest.Layers = append(manifest.Layers, layer)
	config.RootFS.DiffIDs = append(config.RootFS.DiffIDs, diffID)

	configDesc, err := writeBlob(ctx, cs, manifest.Config.MediaType, config, imageName+"-config")
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	manifest.Config = configDesc

	mediaType := manifest.MediaType
	if mediaType == "" {
		mediaType = ocispec.MediaTypeImageManifest
	}

	return writeBlob(ctx, cs, mediaType, manifest, imageName+"-manifest", content.WithLabels(gcLabels(manifest)))
}

// Writes the committed image to an OCI tar archive at the given path.
//
// The target descriptor is exported directly via [archive.WithManifest]
// rather than looked up by name, so the ephemeral manifest never touches
// the stored image record. The base image name becomes the OCI reference
// annotation on the archive entry.
func (c *Container) writeArchive(ctx context.Context, target ocispec.Descriptor, imageName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return err
	}

	return c.client.Export(ctx, f,
		archive.WithManifest(target, imageName),
		archive.WithPlatform(platforms.Only(p)),
	)
}

// Loads and decodes a JSON blob from the content store.
func readBlob(ctx context.Context, cs content.Store, desc ocispec.Descriptor, v any) error {
	b, err := content.ReadBlob(ctx, cs, desc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Serializes a value and writes it to the content store, returning the
// descriptor that references the stored blob.
func writeBlob(ctx context.Context, cs content.Store, mediaType string, v any, ref string, opts ...content.Opt) (ocispec.Descriptor, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(b),
		Size:      int64(len(b)),
	}

	if err := content.WriteBlob(ctx, cs, ref, bytes.NewReader(b), desc, opts...); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

// Computes containerd GC reference labels for a manifest's children.
//
// The labels let containerd's garbage collector trace reachability from the
// manifest blob to its config and layer blobs.
func gcLabels(m ocispec.Manifest) map[string]string {
	labels := map[string]string{
		"containerd.io/gc.ref.content.config": m.Config.Digest.String(),
	}
	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		labels[key] = layer.Digest.String()
	}
	return labels
}
