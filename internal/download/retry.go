package download

import (
	"errors"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

var errNotPending = errors.New("task not pending")

// retryEligible applies the single retry budget from the configuration to
// every failed or timed out task.
func retryEligible(cfg Config, t model.Task) bool {
	return cfg.AutoRetry && t.RetryCount < cfg.MaxRetries
}

// scheduleRetryLocked arms the timer that puts a Retrying task back in the
// queue. Callers hold m.mu.
func (m *Manager) scheduleRetryLocked(id string, delay time.Duration) {
	if old, ok := m.retries[id]; ok {
		old.Stop()
	}
	m.retries[id] = time.AfterFunc(delay, func() {
		m.mu.Lock()
		if _, ok := m.retries[id]; !ok {
			// Cancelled or shut down meanwhile.
			m.mu.Unlock()
			return
		}
		delete(m.retries, id)
		m.requeueLocked(id)
		m.mu.Unlock()
		m.kick()
	})
}

// requeueLocked moves a Retrying task back to Pending at the tail of the
// queue. Callers hold m.mu.
func (m *Manager) requeueLocked(id string) {
	_, err := m.registry.Update(id, func(t *model.Task) error {
		if t.Status != model.StatusRetrying {
			return errNotRetrying
		}
		t.Status = model.StatusPending
		t.Progress = 0
		return nil
	})
	if err != nil {
		return
	}
	m.queue.Push(id)
}

var errNotRetrying = errors.New("task not retrying")
