package download

import (
	"context"

	"github.com/handiism/tubetunes/internal/model"
)

// kick wakes the dispatch loop. Wake-ups coalesce: one pending signal is
// enough because dispatch drains as much as it can.
func (m *Manager) kick() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.wake:
			m.dispatch(ctx)
		}
	}
}

// dispatch starts queued tasks while slots are free, then emits
// allTasksCompleted if a busy period just ended.
func (m *Manager) dispatch(ctx context.Context) {
	limit := m.Config().MaxConcurrent
	outputDir := m.Config().OutputDir

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopping {
		return
	}

	var started []*Worker
	for !m.paused && len(m.workers) < limit {
		id, ok := m.queue.Pop()
		if !ok {
			break
		}

		now := m.now()
		task, err := m.registry.Update(id, func(t *model.Task) error {
			if t.Status != model.StatusPending {
				return errNotPending
			}
			t.Status = model.StatusRunning
			if t.StartedAt.IsZero() {
				t.StartedAt = now
			}
			t.AttemptStartedAt = now
			t.Progress = 0
			t.Message = ""
			return nil
		})
		if err != nil {
			// Cancelled or removed while queued.
			continue
		}

		// Workers outlive ctx so shutdown can stop them with ErrShutdown.
		w := newWorker(context.WithoutCancel(ctx), task, outputDir, m)
		m.workers[id] = w
		started = append(started, w)
		m.publish(EventTaskStarted, task)
		m.logger.Info("task started", "task_id", id, "identifier", task.Identifier, "attempt", task.RetryCount+1)
	}

	for _, w := range started {
		m.wg.Add(1)
		go func(w *Worker) {
			defer m.wg.Done()
			m.finish(w.run())
		}(w)
	}

	if m.busy && len(m.workers) == 0 && len(m.retries) == 0 && m.queue.Len() == 0 {
		m.busy = false
		stats := ComputeStatistics(m.registry.All(), m.now())
		m.emit(Event{Type: EventAllTasksCompleted, Statistics: stats, Time: stats.ComputedAt})
		m.logger.Info("all tasks finished",
			"completed", stats.Completed, "failed", stats.Failed, "cancelled", stats.Cancelled)
	}
}
