package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/handiism/tubetunes/internal/model"
)

// outcome is what a worker reports back to the manager.
type outcome struct {
	taskID    string
	artifact  *model.Artifact
	err       error
	cancelled bool
	timedOut  bool
	shutdown  bool
}

// Worker executes a single task attempt.
//
// A worker owns one Downloader call. It relays progress, validates the
// artifact on success, runs the post-processors and reports the outcome.
// It never retries and never touches the registry.
type Worker struct {
	task           model.Task
	outputDir      string
	downloader     Downloader
	postProcessors []PostProcessor
	onProgress     func(taskID string, p Progress)
	logger         *slog.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc
}

func newWorker(parent context.Context, task model.Task, outputDir string, m *Manager) *Worker {
	ctx, cancel := context.WithCancelCause(parent)
	return &Worker{
		task:           task,
		outputDir:      outputDir,
		downloader:     m.downloader,
		postProcessors: m.postProcessors,
		onProgress:     m.handleProgress,
		logger:         m.logger.With("task_id", task.ID),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Cancel asks the worker to stop. cause decides how the outcome is
// classified: ErrTaskTimeout yields a timeout, ErrShutdown sends the task
// back to the queue, anything else is a cancellation.
func (w *Worker) Cancel(cause error) {
	w.cancel(cause)
}

func (w *Worker) run() outcome {
	defer w.cancel(nil)

	req := Request{
		TaskID:     w.task.ID,
		Identifier: w.task.Identifier,
		OutputDir:  w.outputDir,
		Options:    w.task.Options,
	}

	artifact, err := w.downloader.Download(w.ctx, req, func(p Progress) {
		w.onProgress(w.task.ID, p)
	})
	if err != nil {
		if w.ctx.Err() != nil {
			cause := context.Cause(w.ctx)
			switch {
			case errors.Is(cause, ErrTaskTimeout):
				return outcome{taskID: w.task.ID, err: cause, timedOut: true}
			case errors.Is(cause, ErrShutdown):
				return outcome{taskID: w.task.ID, err: cause, shutdown: true}
			}
			return outcome{taskID: w.task.ID, err: cause, cancelled: true}
		}
		return outcome{taskID: w.task.ID, err: err}
	}

	if err := validateArtifact(artifact, w.task.Identifier); err != nil {
		return outcome{taskID: w.task.ID, err: err}
	}

	for _, pp := range w.postProcessors {
		if err := pp.Process(w.ctx, artifact, w.task.Options); err != nil {
			w.logger.Warn("post-processing failed", "path", artifact.Path, "error", err)
		}
	}

	return outcome{taskID: w.task.ID, artifact: artifact}
}

// validateArtifact checks that the reported file exists and completes
// the artifact's identity fields.
func validateArtifact(a *model.Artifact, identifier string) error {
	if a == nil || a.Path == "" {
		return fmt.Errorf("%w: downloader reported no file", ErrArtifactMissing)
	}

	info, err := os.Stat(a.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactMissing, a.Path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrArtifactMissing, a.Path)
	}

	a.Size = info.Size()
	// The catalog is keyed by the task identifier so admission can find it.
	a.Identifier = identifier
	if a.Format == "" {
		a.Format = a.FileFormat()
	}
	return nil
}
