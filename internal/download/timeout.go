package download

import (
	"context"
	"slices"
	"time"
)

func (m *Manager) timeoutLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.timeoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.checkTimeouts()
		}
	}
}

// checkTimeouts cancels the workers whose attempt has run longer than the
// task timeout. It only requests cancellation; the worker's outcome
// decides the task status. It returns the affected ids.
//
// The attempt start is read from the worker itself, under m.mu, so a task
// that was re-dispatched since its last attempt is judged by the new one.
func (m *Manager) checkTimeouts() []string {
	timeout := m.Config().TaskTimeout
	if timeout <= 0 {
		return nil
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for id, w := range m.workers {
		if now.Sub(w.task.AttemptStartedAt) <= timeout {
			continue
		}
		w.Cancel(ErrTaskTimeout)
		expired = append(expired, id)
		m.logger.Warn("task timed out", "task_id", id, "timeout", timeout)
	}
	slices.Sort(expired)
	return expired
}
