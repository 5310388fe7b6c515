// Package build executes rendered plans against a build backend.
//
// The executor iterates a plan's instructions in order, dispatching each to
// a [Backend] and checking its exit status. Execution is fail-fast: the
// first failed instruction halts the plan, and the error identifies the
// failing index and carries the backend's diagnostic output. There is no
// retry and no rollback; externally visible side effects (package installs,
// downloads, file writes) happen inside the backend and remain in place.
//
// The executor holds no shared mutable state, so independent plans may be
// executed concurrently against separate backends.
//
// Example usage:
//
//	plan, err := render.Render(rec, params)
//	if err != nil {
//	    return err
//	}
//
//	result, err := build.Execute(ctx, backend, plan)
//	if err != nil {
//	    var ie *build.InstructionError
//	    if errors.As(err, &ie) {
//	        log.Error("build failed", "index", ie.Index, "diagnostic", ie.Diagnostic)
//	    }
//	    return err
//	}
package build
