package build

import (
	"errors"
	"fmt"
)

var ErrInstruction = errors.New("instruction failed")

// Reports a failed instruction: which plan entry failed, its exit status,
// and the backend's diagnostic output.
type InstructionError struct {
	Index      int    // Zero-based position of the instruction in the plan.
	ExitCode   int    // Exit status reported by the backend.
	Diagnostic string // Diagnostic output, typically captured stderr.
}

func (e *InstructionError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("instruction %d failed with exit code %d", e.Index, e.ExitCode)
	}
	return fmt.Sprintf("instruction %d failed with exit code %d: %s", e.Index, e.ExitCode, e.Diagnostic)
}

func (e *InstructionError) Unwrap() error {
	return ErrInstruction
}
