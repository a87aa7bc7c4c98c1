package deploy

import "errors"

var (
	// ErrDependencyOrderViolation is returned when a deploy would run before
	// the artifacts it depends on are deployed. No deploy call is issued.
	ErrDependencyOrderViolation = errors.New("dependency order violation")

	// ErrToolchainFailure wraps a non-zero toolchain subprocess exit. The
	// captured output is attached to the wrapping error.
	ErrToolchainFailure = errors.New("toolchain failure")

	// ErrTimeoutExceeded is returned when a blocking external call exceeded
	// its step timeout. It is handled like a toolchain failure: the run fails
	// and nothing is retried automatically.
	ErrTimeoutExceeded = errors.New("timeout exceeded")

	// ErrIrreversibleOperationBlocked is returned when a production-class
	// destructive operation is attempted without an explicit override.
	ErrIrreversibleOperationBlocked = errors.New("irreversible operation blocked")

	// ErrPreflightFailed is returned when a pre-deploy check fails. Preflight
	// failures guarantee zero external side effects.
	ErrPreflightFailed = errors.New("preflight check failed")

	// ErrIncompatibleVersions is returned when the component versions do not
	// share (major, minor) and a deploy is refused.
	ErrIncompatibleVersions = errors.New("component versions incompatible")
)
