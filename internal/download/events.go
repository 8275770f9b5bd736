package download

import (
	"fmt"
	"sync"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

// EventType identifies what happened in an Event.
type EventType int

const (
	EventTaskAdded EventType = iota
	EventTaskStarted
	EventTaskProgress
	EventTaskCompleted
	EventTaskFailed
	EventTaskRetrying
	EventTaskCancelled
	EventAllTasksCompleted
	EventStatisticsUpdated
)

// String returns the event name, e.g. "taskCompleted".
func (t EventType) String() string {
	switch t {
	case EventTaskAdded:
		return "taskAdded"
	case EventTaskStarted:
		return "taskStarted"
	case EventTaskProgress:
		return "taskProgress"
	case EventTaskCompleted:
		return "taskCompleted"
	case EventTaskFailed:
		return "taskFailed"
	case EventTaskRetrying:
		return "taskRetrying"
	case EventTaskCancelled:
		return "taskCancelled"
	case EventAllTasksCompleted:
		return "allTasksCompleted"
	case EventStatisticsUpdated:
		return "statisticsUpdated"
	default:
		return "unknown"
	}
}

// Level indicates the severity/type of an event when shown to a user.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is a notification published by the Manager.
//
// Task is a snapshot taken when the event was produced. Statistics is only
// set on EventStatisticsUpdated and EventAllTasksCompleted.
type Event struct {
	Type       EventType
	TaskID     string
	Task       model.Task
	Progress   float64
	Message    string
	Statistics Statistics
	Time       time.Time
}

// Level classifies the event for display.
func (e Event) Level() Level {
	switch e.Type {
	case EventTaskCompleted, EventAllTasksCompleted:
		return LevelSuccess
	case EventTaskFailed:
		return LevelError
	case EventTaskRetrying, EventTaskCancelled:
		return LevelWarning
	case EventTaskProgress, EventStatisticsUpdated:
		return LevelVerbose
	default:
		return LevelInfo
	}
}

// Describe returns a one-line human readable description.
func (e Event) Describe() string {
	name := e.Task.Identifier
	if e.Task.Artifact != nil && e.Task.Artifact.Title != "" {
		name = e.Task.Artifact.DisplayName()
	}

	switch e.Type {
	case EventTaskAdded:
		return fmt.Sprintf("Queued: %s", name)
	case EventTaskStarted:
		return fmt.Sprintf("Started: %s", name)
	case EventTaskProgress:
		if e.Message != "" {
			return fmt.Sprintf("%s: %.0f%% %s", name, e.Progress*100, e.Message)
		}
		return fmt.Sprintf("%s: %.0f%%", name, e.Progress*100)
	case EventTaskCompleted:
		return fmt.Sprintf("Downloaded: %s", name)
	case EventTaskFailed:
		return fmt.Sprintf("Failed: %s: %s", name, e.Task.ErrorMessage)
	case EventTaskRetrying:
		return fmt.Sprintf("Retry %d for %s: %s", e.Task.RetryCount, name, e.Task.ErrorMessage)
	case EventTaskCancelled:
		return fmt.Sprintf("Cancelled: %s", name)
	case EventAllTasksCompleted:
		s := e.Statistics
		return fmt.Sprintf("All tasks finished: %d completed, %d failed, %d cancelled", s.Completed, s.Failed, s.Cancelled)
	case EventStatisticsUpdated:
		s := e.Statistics
		return fmt.Sprintf("%d active, %d pending, %d/%d done (%.0f%%)",
			s.Active, s.Pending, s.Completed+s.Failed+s.Cancelled, s.Total, s.OverallProgress*100)
	default:
		return e.Type.String()
	}
}

// Bus fans events out to subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
// This keeps workers and the scheduler independent of slow consumers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewBus creates a Bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// function unsubscribes and closes the channel; calling it twice is safe.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
