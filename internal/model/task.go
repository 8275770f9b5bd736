package model

import "time"

// Options is the per-task download configuration.
//
// Options is captured by value when a task is created, so later changes
// to the caller's copy or to global settings never reach a running task.
type Options struct {
	// AudioFormat is the target audio container, e.g. "mp3" or "m4a".
	AudioFormat string

	// AudioQuality is passed to the extractor, "0" being the best VBR.
	AudioQuality string

	// OutputTemplate names the output file relative to the output directory.
	// It uses the extractor's template syntax, e.g. "%(title)s [%(id)s].%(ext)s".
	OutputTemplate string

	// EmbedMetadata enables ID3 tagging of the finished file.
	EmbedMetadata bool

	// EmbedArtwork enables embedding the thumbnail as cover art.
	EmbedArtwork bool
}

// Task is one unit of work: fetch a single identifier into a single artifact.
//
// Tasks are owned by the download manager. Every copy handed out is a
// snapshot; mutating it has no effect on the manager's state.
type Task struct {
	// ID is the unique, immutable task id ("task-<uuid>").
	ID string

	// Identifier is the source reference, a video id or URL.
	Identifier string

	// Options is the snapshot taken at creation time.
	Options Options

	Status TaskStatus

	// Progress is the fraction done in [0, 1]. Message describes the
	// current step. Both are only written while the task is running.
	Progress float64
	Message  string

	// RetryCount is the number of retries already scheduled.
	RetryCount int

	CreatedAt time.Time

	// StartedAt is set on the first transition into Running and kept
	// across retries.
	StartedAt time.Time

	// AttemptStartedAt is reset on every transition into Running. The
	// per-task timeout is measured from here.
	AttemptStartedAt time.Time

	// FinishedAt is set once, when the task reaches a terminal status.
	FinishedAt time.Time

	// Artifact is only present on Completed tasks.
	Artifact *Artifact

	// ErrorMessage holds the last error of a Failed or Timeout task.
	ErrorMessage string
}

// Elapsed returns how long the task has been (or was) in flight. It is
// zero for tasks that never started.
func (t Task) Elapsed(now time.Time) time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	if !t.FinishedAt.IsZero() {
		return t.FinishedAt.Sub(t.StartedAt)
	}
	return now.Sub(t.StartedAt)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	if t.Artifact != nil {
		a := *t.Artifact
		t.Artifact = &a
	}
	return t
}
