package download

import (
	"context"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

// Statistics is an aggregate snapshot of all registered tasks.
//
// Pending counts queued and retrying tasks. Completed, Failed and
// Cancelled together account for every finished task, Active and Pending
// for every unfinished one.
type Statistics struct {
	Total     int
	Active    int
	Pending   int
	Completed int
	Failed    int
	Cancelled int

	// OverallProgress is the mean progress of all tasks except cancelled
	// ones. Completed and failed tasks count as fully progressed.
	OverallProgress float64

	// TotalElapsed sums the run time of completed tasks, first start to finish.
	TotalElapsed time.Duration

	// AverageElapsed is TotalElapsed divided by Completed.
	AverageElapsed time.Duration

	ComputedAt time.Time
}

// Finished returns the number of tasks in a terminal status.
func (s Statistics) Finished() int {
	return s.Completed + s.Failed + s.Cancelled
}

// ComputeStatistics derives a snapshot from task copies. It does not
// depend on any previous snapshot.
func ComputeStatistics(tasks []model.Task, now time.Time) Statistics {
	s := Statistics{Total: len(tasks), ComputedAt: now}

	var progressSum float64
	var counted int
	for _, t := range tasks {
		switch t.Status {
		case model.StatusRunning:
			s.Active++
			progressSum += t.Progress
			counted++
		case model.StatusPending, model.StatusRetrying:
			s.Pending++
			counted++
		case model.StatusCompleted:
			s.Completed++
			progressSum++
			counted++
			s.TotalElapsed += t.Elapsed(now)
		case model.StatusFailed, model.StatusTimeout:
			// Timeout is transient inside the manager; count it as failed
			// should a snapshot ever see it.
			s.Failed++
			progressSum++
			counted++
		case model.StatusCancelled:
			s.Cancelled++
		}
	}

	if counted > 0 {
		s.OverallProgress = progressSum / float64(counted)
	}
	if s.Completed > 0 {
		s.AverageElapsed = s.TotalElapsed / time.Duration(s.Completed)
	}
	return s
}

func (m *Manager) statisticsLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := m.GetStatistics()
			m.emit(Event{Type: EventStatisticsUpdated, Statistics: stats, Time: stats.ComputedAt})
		}
	}
}
