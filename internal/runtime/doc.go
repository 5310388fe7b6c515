// Package runtime provides the containerd-backed build backend.
//
// A [Runtime] connects to a containerd daemon, imports a base-image OCI
// archive, and starts a build [Container] with an overlayfs snapshot and a
// long-lived task. Each plan instruction attaches to the task as an
// additional exec ("shell -c instruction") with the plan environment merged
// over the container's own. When the plan succeeds, the container's
// accumulated filesystem changes are committed as a new layer and written
// out as an OCI archive.
//
// Example usage:
//
//	rt, err := runtime.New(runtime.DefaultAddress, runtime.DefaultNamespace, "")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	tag, err := rt.ImportBase(ctx, "base.tar")
//	if err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartContainer(ctx, tag, "kiln-build")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := build.Execute(ctx, ctr, plan)
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Stop(ctx); err != nil {
//	    return err
//	}
//	return ctr.Export(ctx, "dist")
package runtime
