package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/kilnhq/kiln/internal/build"
)

var ErrShell = errors.New("shell execution failed")

// Compile-time check that the backend satisfies the executor's contract.
var _ build.Backend = (*Backend)(nil)

// A build backend that runs instructions with an embedded POSIX shell
// interpreter on the host.
//
// No container daemon is involved; instructions see the host filesystem and
// the host environment plus the plan environment. The plan's shell path is
// ignored because the interpreter is built in.
type Backend struct {
	dir string // Working directory for instructions. Empty uses the process cwd.
}

// Creates a new host shell backend rooted at dir.
func New(dir string) *Backend {
	return &Backend{dir: dir}
}

// Runs one instruction through the embedded interpreter.
//
// The instruction is parsed as a shell program, so failed syntax surfaces
// before anything runs. A non-zero exit status is returned in the result;
// only parse and interpreter setup failures are errors.
func (b *Backend) Exec(ctx context.Context, _ string, instruction string, env []string) (*build.ExecResult, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(instruction), "instruction")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShell, err)
	}

	var stdout, stderr bytes.Buffer
	environ := append(os.Environ(), env...)

	runner, err := interp.New(
		interp.Dir(b.dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShell, err)
	}

	exitCode := 0
	if err := runner.Run(ctx, prog); err != nil {
		status, ok := interp.IsExitStatus(err)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrShell, err)
		}
		exitCode = int(status)
	}

	return &build.ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
