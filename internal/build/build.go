package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kilnhq/kiln/internal/render"
)

// Runs one concrete instruction against the build backend.
//
// A non-zero exit status is reported in the result, not as an error; the
// error return is reserved for failures to reach or drive the backend.
type Backend interface {
	Exec(ctx context.Context, shell, instruction string, env []string) (*ExecResult, error)
}

// Outcome of a single instruction execution.
type ExecResult struct {
	ExitCode int    // Exit status of the instruction.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Returned after a fully successful plan execution.
type Result struct {
	Executed int // Number of instructions executed.
}

// Runs a rendered plan against the backend, in order, stopping at the first
// failure.
//
// Instructions execute strictly sequentially; later instructions may depend
// on filesystem or environment state produced by earlier ones. On a failed
// status the plan halts and an [*InstructionError] reports the zero-based
// index and the backend's diagnostic output. Effects of already-executed
// instructions are not rolled back.
func Execute(ctx context.Context, backend Backend, plan *render.Plan) (*Result, error) {
	for i, instruction := range plan.Instructions {
		slog.Debug("run", "index", i, "instruction", instruction)

		result, err := backend.Exec(ctx, plan.Shell, instruction, plan.Env)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}

		if result.ExitCode != 0 {
			return nil, &InstructionError{
				Index:      i,
				ExitCode:   result.ExitCode,
				Diagnostic: diagnostic(result),
			}
		}
	}

	return &Result{Executed: len(plan.Instructions)}, nil
}

// Picks the most useful diagnostic text from a failed execution: stderr when
// present, stdout otherwise.
func diagnostic(result *ExecResult) string {
	if d := strings.TrimSpace(result.Stderr); d != "" {
		return d
	}
	return strings.TrimSpace(result.Stdout)
}
