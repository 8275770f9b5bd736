package download

import "errors"

var (
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyIdentifier is returned by AddTask for a blank identifier.
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrAlreadyRunning is returned by Run when the manager is already running.
	ErrAlreadyRunning = errors.New("manager already running")

	// ErrCancelledByUser is the cancellation cause of CancelTask and CancelAllTasks.
	ErrCancelledByUser = errors.New("cancelled by user")

	// ErrTaskTimeout is the cancellation cause used by the timeout monitor.
	ErrTaskTimeout = errors.New("task timed out")

	// ErrShutdown is the cancellation cause of workers still running when Run returns.
	ErrShutdown = errors.New("manager shutting down")

	// ErrArtifactMissing is reported when a download claims success but the
	// file is not on disk.
	ErrArtifactMissing = errors.New("artifact missing")
)
