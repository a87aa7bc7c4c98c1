package commands

import (
	"errors"
	"strings"
)

// UsageError marks an error caused by how the CLI was invoked rather than by
// the operation itself. The process exits with a distinct code for these.
type UsageError struct {
	err error
}

func (e *UsageError) Error() string { return e.err.Error() }

func (e *UsageError) Unwrap() error { return e.err }

// usagePatterns matches the cobra errors that do not flow through the flag
// error hook (argument arity, required flags, unknown subcommands).
var usagePatterns = []string{
	"unknown command",
	"required flag(s)",
	"accepts ",
	"requires at least",
	"invalid argument",
}

// ExitCode maps an Execute error to the process exit code: 0 for success,
// 2 for usage errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}

	msg := err.Error()
	for _, pattern := range usagePatterns {
		if strings.Contains(msg, pattern) {
			return 2
		}
	}

	return 1
}
