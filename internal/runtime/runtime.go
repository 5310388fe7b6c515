package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
)

const (

	// Default containerd socket address.
	DefaultAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for images and containers.
	DefaultNamespace = "kiln"

	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing kiln to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client for one target platform.
type Runtime struct {
	client   *containerd.Client // Containerd client for images and containers.
	platform string             // OCI platform all operations target (e.g., "linux/amd64").
}

// Connects to the containerd socket at the given address.
//
// The namespace scopes all operations to this tool's images and containers.
// An empty platform targets the host. The runtime must be closed when no
// longer needed.
func New(address, namespace, platform string) (*Runtime, error) {
	if platform == "" {
		platform = "linux/" + goruntime.GOARCH
	}

	if _, err := platforms.Parse(platform); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	return &Runtime{client: client, platform: platform}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Imports a base-image OCI archive and unpacks it for the target platform.
//
// The archive is imported into the content store, tagged with a
// deterministic name derived from the path, and its layers are unpacked
// into the snapshotter. Returns the tag to start containers from. The
// archive must contain exactly one image; a multi-platform archive counts
// as one (a single OCI index with per-platform manifests).
func (rt *Runtime) ImportBase(ctx context.Context, path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	if len(imported) == 0 {
		return "", ErrEmptyArchive
	} else if len(imported) > 1 {
		return "", ErrMultipleImages
	}

	tag := baseTag(path)
	if err := rt.tag(ctx, imported[0], tag); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	image, err := rt.resolve(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	if err := image.Unpack(ctx, snapshotter); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	slog.Debug("base image imported", "path", path, "tag", tag)
	return tag, nil
}

// Starts a build container from an imported base-image tag.
//
// Any stale container left by a previous build with the same ID is removed
// first. The container runs a long-lived task so that each plan instruction
// can attach as an additional exec.
func (rt *Runtime) StartContainer(ctx context.Context, tag, id string) (*Container, error) {
	c := &Container{
		client:   rt.client,
		id:       id,
		platform: rt.platform,
	}

	c.remove(ctx)

	image, err := rt.resolve(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	slog.Debug("container started", "id", id, "image", tag)
	return c, nil
}

// Records an imported image under a tag, updating an existing record in
// place. The source record is dropped when its name differs from the tag.
func (rt *Runtime) tag(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Looks up a tagged image and selects the manifest for the target platform.
func (rt *Runtime) resolve(ctx context.Context, tag string) (containerd.Image, error) {
	p, err := platforms.Parse(rt.platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Produces a containerd image tag from a base archive path.
//
// The path is hashed so the tag is always a valid OCI reference regardless
// of which characters the path contains.
func baseTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("base/%s:latest", hex.EncodeToString(h[:]))
}
