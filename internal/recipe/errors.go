package recipe

import (
	"errors"
	"fmt"
)

var (
	ErrSource   = errors.New("source resolution failed")
	ErrStep     = errors.New("recipe step failed")
	ErrArtifact = errors.New("artifact promotion failed")
)

// Reports a tool that exited with a non-zero status.
type ExitError struct {
	Step string // Name of the failed step, e.g. "compile".
	Code int    // Exit status of the tool.
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Step, e.Code)
}

// Returns the exit status to propagate.
func (e *ExitError) ExitCode() int {
	return e.Code
}
