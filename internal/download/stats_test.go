package download

import (
	"testing"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

func TestComputeStatistics(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(time.Minute)

	tasks := []model.Task{
		{Status: model.StatusPending},
		{Status: model.StatusRetrying},
		{Status: model.StatusRunning, Progress: 0.5, StartedAt: start},
		{Status: model.StatusCompleted, StartedAt: start, FinishedAt: start.Add(10 * time.Second)},
		{Status: model.StatusCompleted, StartedAt: start, FinishedAt: start.Add(30 * time.Second)},
		{Status: model.StatusFailed},
		{Status: model.StatusCancelled, Progress: 0.9},
	}

	s := ComputeStatistics(tasks, now)

	if s.Total != 7 || s.Active != 1 || s.Pending != 2 || s.Completed != 2 || s.Failed != 1 || s.Cancelled != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Active+s.Pending+s.Finished() != s.Total {
		t.Errorf("counts do not add up to Total: %+v", s)
	}

	// (0 + 0 + 0.5 + 1 + 1 + 1) / 6, cancelled excluded.
	if want := 3.5 / 6; s.OverallProgress != want {
		t.Errorf("OverallProgress = %v, want %v", s.OverallProgress, want)
	}
	if s.TotalElapsed != 40*time.Second {
		t.Errorf("TotalElapsed = %v, want 40s", s.TotalElapsed)
	}
	if s.AverageElapsed != 20*time.Second {
		t.Errorf("AverageElapsed = %v, want 20s", s.AverageElapsed)
	}
	if !s.ComputedAt.Equal(now) {
		t.Errorf("ComputedAt = %v, want %v", s.ComputedAt, now)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	s := ComputeStatistics(nil, time.Now())
	if s.Total != 0 || s.OverallProgress != 0 || s.AverageElapsed != 0 {
		t.Errorf("empty statistics = %+v", s)
	}
}
