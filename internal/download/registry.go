package download

import (
	"fmt"
	"sync"

	"github.com/handiism/tubetunes/internal/model"
)

// Registry is the authoritative store of task state.
//
// All access goes through its methods, which hold a single mutex for the
// duration of the call. Tasks are handed out as deep copies, and the
// mutator passed to Update is the only way to change one.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*model.Task)}
}

// Insert adds a task. It fails if a task with the same id exists.
func (r *Registry) Insert(task model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; ok {
		return fmt.Errorf("task %s already registered", task.ID)
	}
	r.insertLocked(task)
	return nil
}

// InsertUnlessActive adds task unless an unfinished task with the same
// identifier exists. It returns the existing task and false in that case.
func (r *Registry) InsertUnlessActive(task model.Task) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.findActiveLocked(task.Identifier); ok {
		return existing.Clone(), false
	}
	r.insertLocked(task)
	return task.Clone(), true
}

// Get returns a copy of the task with the given id.
func (r *Registry) Get(id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.Clone(), nil
}

// Update applies mutate to the task atomically and returns the result.
//
// mutate works on a copy. If it returns an error the task is left
// unchanged and the error is returned as is.
func (r *Registry) Update(id string, mutate func(*model.Task) error) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	updated := t.Clone()
	if err := mutate(&updated); err != nil {
		return t.Clone(), err
	}
	*t = updated
	return t.Clone(), nil
}

// All returns copies of every task in insertion order.
func (r *Registry) All() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id].Clone())
	}
	return out
}

// AllByStatus returns copies of the tasks in any of the given statuses,
// in insertion order.
func (r *Registry) AllByStatus(statuses ...model.TaskStatus) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Task
	for _, id := range r.order {
		t := r.tasks[id]
		for _, s := range statuses {
			if t.Status == s {
				out = append(out, t.Clone())
				break
			}
		}
	}
	return out
}

// FindActive returns the unfinished task for identifier, if any.
func (r *Registry) FindActive(identifier string) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.findActiveLocked(identifier)
	if !ok {
		return model.Task{}, false
	}
	return t.Clone(), true
}

// Remove deletes a task. It reports whether the task existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false
	}
	r.removeLocked(id)
	return true
}

// RemoveFinished deletes all terminal tasks and returns how many went.
func (r *Registry) RemoveFinished() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if r.tasks[id].Status.IsTerminal() {
			delete(r.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}

// EvictFinished drops the oldest terminal tasks until at most keep remain.
func (r *Registry) EvictFinished(keep int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := 0
	for _, id := range r.order {
		if r.tasks[id].Status.IsTerminal() {
			finished++
		}
	}

	excess := finished - keep
	if excess <= 0 {
		return 0
	}

	evicted := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if evicted < excess && r.tasks[id].Status.IsTerminal() {
			delete(r.tasks, id)
			evicted++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return evicted
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *Registry) insertLocked(task model.Task) {
	t := task.Clone()
	r.tasks[t.ID] = &t
	r.order = append(r.order, t.ID)
}

func (r *Registry) removeLocked(id string) {
	delete(r.tasks, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) findActiveLocked(identifier string) (*model.Task, bool) {
	for _, id := range r.order {
		t := r.tasks[id]
		if t.Identifier == identifier && !t.Status.IsTerminal() {
			return t, true
		}
	}
	return nil, false
}
