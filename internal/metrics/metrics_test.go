package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/handiism/tubetunes/internal/download"
	"github.com/handiism/tubetunes/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	events := []download.Event{
		{Type: download.EventTaskAdded},
		{Type: download.EventTaskAdded},
		{Type: download.EventTaskRetrying},
		{Type: download.EventTaskCompleted, Time: start.Add(3 * time.Second), Task: model.Task{
			StartedAt:  start,
			FinishedAt: start.Add(3 * time.Second),
			Artifact:   &model.Artifact{Path: "/music/a.mp3", Size: 2048},
		}},
		{Type: download.EventTaskFailed},
		{Type: download.EventStatisticsUpdated, Statistics: download.Statistics{Active: 1, Pending: 4, OverallProgress: 0.25}},
	}
	for _, e := range events {
		m.Observe(e)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"added", testutil.ToFloat64(m.tasksAdded), 2},
		{"retried", testutil.ToFloat64(m.tasksRetried), 1},
		{"completed", testutil.ToFloat64(m.tasksCompleted), 1},
		{"failed", testutil.ToFloat64(m.tasksFailed), 1},
		{"cancelled", testutil.ToFloat64(m.tasksCancelled), 0},
		{"bytes", testutil.ToFloat64(m.downloadedBytes), 2048},
		{"active", testutil.ToFloat64(m.tasksActive), 1},
		{"pending", testutil.ToFloat64(m.tasksPending), 4},
		{"progress", testutil.ToFloat64(m.overallProgress), 0.25},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.taskDuration); n != 1 {
		t.Errorf("task_duration_seconds has %d series, want 1", n)
	}
}

func TestMetrics_ObserverCountsEveryEvent(t *testing.T) {
	m := New()
	never := download.DownloaderFunc(func(ctx context.Context, req download.Request, progress func(download.Progress)) (*model.Artifact, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	mgr, err := download.NewManager(download.DefaultConfig(t.TempDir()), never, download.WithObserver(m.Observe))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// An unread subscriber with a one-event buffer drops most of these.
	_, unsubscribe := mgr.Subscribe(1)
	defer unsubscribe()

	const n = 50
	ids := make([]string, 0, n)
	for i := range n {
		ids = append(ids, fmt.Sprintf("video%06d", i))
	}
	added := mgr.AddBatchTasks(context.Background(), ids, model.Options{AudioFormat: "mp3"})
	if len(added) != n {
		t.Fatalf("AddBatchTasks queued %d tasks, want %d", len(added), n)
	}
	mgr.CancelAllTasks()

	if got := testutil.ToFloat64(m.tasksAdded); got != n {
		t.Errorf("added = %v, want %d", got, n)
	}
	if got := testutil.ToFloat64(m.tasksCancelled); got != n {
		t.Errorf("cancelled = %v, want %d", got, n)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe(download.Event{Type: download.EventTaskAdded})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "tubetunes_tasks_added_total 1") {
		t.Errorf("exposition missing tasks_added_total:\n%s", body)
	}
}
