package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kilnhq/kiln/internal/build"
	"github.com/kilnhq/kiln/internal/paths"
	"github.com/kilnhq/kiln/internal/render"
	"github.com/kilnhq/kiln/internal/runtime"
	"github.com/kilnhq/kiln/internal/shell"
)

// Represents the 'kiln build' command.
type BuildCmd struct {
	planFlags

	Backend string `help:"Build backend." enum:"shell,containerd" default:"shell"`
	Workdir string `help:"Working directory for the shell backend." placeholder:"DIR"`

	Image     string `help:"Base-image OCI archive for the containerd backend." placeholder:"PATH"`
	Output    string `help:"Output directory for the exported image." placeholder:"DIR"`
	Name      string `help:"Build name, used as the container ID." default:"kiln-build"`
	Address   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	Namespace string `help:"Containerd namespace." default:"kiln"`
	Platform  string `help:"Target OCI platform (e.g. linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
}

// Executes the build command.
//
// Renders the recipe against the supplied parameters and executes the
// resulting plan in order, stopping at the first failed instruction.
func (c *BuildCmd) Run(ctx context.Context) error {
	plan, err := c.plan()
	if err != nil {
		return err
	}

	slog.Info("plan rendered", "instructions", len(plan.Instructions), "backend", c.Backend)

	switch c.Backend {
	case "containerd":
		return c.runContainerd(ctx, plan)
	default:
		return c.runShell(ctx, plan)
	}
}

// Executes the plan with the embedded host shell.
func (c *BuildCmd) runShell(ctx context.Context, plan *render.Plan) error {
	result, err := build.Execute(ctx, shell.New(c.Workdir), plan)
	if err != nil {
		return err
	}

	slog.Info("build complete", "instructions", result.Executed)
	return nil
}

// Executes the plan inside a containerd build container and exports the
// result as an OCI archive.
func (c *BuildCmd) runContainerd(ctx context.Context, plan *render.Plan) error {
	if c.Image == "" {
		return fmt.Errorf("the containerd backend requires --image")
	}

	output := c.Output
	if output == "" {
		output = paths.DefaultOutput()
	}
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return err
	}

	rt, err := runtime.New(c.Address, c.Namespace, c.Platform)
	if err != nil {
		return err
	}
	defer rt.Close()

	tag, err := rt.ImportBase(ctx, c.Image)
	if err != nil {
		return err
	}

	ctr, err := rt.StartContainer(ctx, tag, c.Name)
	if err != nil {
		return err
	}
	defer ctr.Destroy(ctx)

	result, err := build.Execute(ctx, ctr, plan)
	if err != nil {
		return err
	}

	if err := ctr.Stop(ctx); err != nil {
		return err
	}
	if err := ctr.Export(ctx, output); err != nil {
		return err
	}

	slog.Info("build complete", "instructions", result.Executed, "output", output)
	return nil
}
