package cli

import "fmt"

// Exit codes for the relnote CLI.
// These codes support scripting and CI integration.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (I/O, network, git)
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates required external state is missing
	// (no token, no remote, no tags)
	ExitMissingDependencies = 4
)

// ExitError carries an explicit process exit code through cobra's RunE
// error path. The caller has already printed any user-facing message.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
