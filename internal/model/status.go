package model

// TaskStatus is the lifecycle state of a download task.
//
// The allowed transitions are:
//
//	Pending   -> Running, Cancelled
//	Running   -> Completed, Failed, Timeout, Cancelled
//	Failed    -> Retrying (retry budget left), terminal otherwise
//	Timeout   -> Retrying (retry budget left), Failed otherwise
//	Retrying  -> Pending (after the retry delay), Cancelled
//
// Completed, Cancelled and a Failed task whose retries are exhausted never
// change again.
type TaskStatus int

const (
	// StatusPending means the task is queued and waiting for a free slot.
	StatusPending TaskStatus = iota

	// StatusRunning means a worker is fetching the task right now.
	StatusRunning

	// StatusRetrying means the last attempt failed and the task waits out
	// the retry delay before it is queued again.
	StatusRetrying

	// StatusCompleted means the artifact was fetched and validated.
	StatusCompleted

	// StatusFailed means the task gave up. ErrorMessage holds the last error.
	StatusFailed

	// StatusCancelled means the task was stopped on request.
	StatusCancelled

	// StatusTimeout means the attempt exceeded the per-task time budget.
	StatusTimeout
)

// String returns the lowercase name of the status.
func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusRetrying:
		return "retrying"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the task has finished for good.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsActive reports whether a worker currently owns the task.
func (s TaskStatus) IsActive() bool {
	return s == StatusRunning
}

// IsWaiting reports whether the task waits for dispatch, either in the
// queue or in a retry delay.
func (s TaskStatus) IsWaiting() bool {
	return s == StatusPending || s == StatusRetrying
}
