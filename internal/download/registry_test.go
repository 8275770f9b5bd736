package download

import (
	"errors"
	"testing"

	"github.com/handiism/tubetunes/internal/model"
)

func TestRegistry_InsertUnlessActive(t *testing.T) {
	r := NewRegistry()

	first := model.Task{ID: "1", Identifier: "abc", Status: model.StatusPending}
	if _, ok := r.InsertUnlessActive(first); !ok {
		t.Fatal("first insert rejected")
	}

	existing, ok := r.InsertUnlessActive(model.Task{ID: "2", Identifier: "abc", Status: model.StatusPending})
	if ok {
		t.Fatal("second insert for an active identifier accepted")
	}
	if existing.ID != "1" {
		t.Errorf("existing.ID = %q, want %q", existing.ID, "1")
	}

	if _, err := r.Update("1", func(t *model.Task) error {
		t.Status = model.StatusFailed
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := r.InsertUnlessActive(model.Task{ID: "3", Identifier: "abc"}); !ok {
		t.Error("insert after the previous task finished was rejected")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistry_InsertDuplicateID(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert(model.Task{ID: "1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(model.Task{ID: "1"}); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrTaskNotFound", err)
	}
	if _, err := r.Update("missing", func(*model.Task) error { return nil }); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrTaskNotFound", err)
	}
}

func TestRegistry_UpdateErrorLeavesTaskUnchanged(t *testing.T) {
	r := NewRegistry()
	r.Insert(model.Task{ID: "1", Status: model.StatusPending})

	boom := errors.New("boom")
	_, err := r.Update("1", func(t *model.Task) error {
		t.Status = model.StatusRunning
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want %v", err, boom)
	}

	got, _ := r.Get("1")
	if got.Status != model.StatusPending {
		t.Errorf("Status = %v, want pending", got.Status)
	}
}

func TestRegistry_SnapshotsAreCopies(t *testing.T) {
	r := NewRegistry()
	r.Insert(model.Task{ID: "1", Artifact: &model.Artifact{Title: "a"}})

	got, _ := r.Get("1")
	got.Status = model.StatusCompleted
	got.Artifact.Title = "changed"

	again, _ := r.Get("1")
	if again.Status != model.StatusPending || again.Artifact.Title != "a" {
		t.Errorf("registry task changed through a snapshot: %+v", again)
	}
}

func TestRegistry_AllByStatusKeepsOrder(t *testing.T) {
	r := NewRegistry()
	statuses := []model.TaskStatus{
		model.StatusRunning, model.StatusPending, model.StatusRunning, model.StatusCompleted,
	}
	for i, s := range statuses {
		r.Insert(model.Task{ID: string(rune('a' + i)), Status: s})
	}

	got := r.AllByStatus(model.StatusRunning, model.StatusCompleted)
	var ids string
	for _, task := range got {
		ids += task.ID
	}
	if ids != "acd" {
		t.Errorf("AllByStatus ids = %q, want %q", ids, "acd")
	}
}

func TestRegistry_RemoveFinishedAndEvict(t *testing.T) {
	newRegistry := func() *Registry {
		r := NewRegistry()
		r.Insert(model.Task{ID: "1", Status: model.StatusCompleted})
		r.Insert(model.Task{ID: "2", Status: model.StatusRunning})
		r.Insert(model.Task{ID: "3", Status: model.StatusFailed})
		r.Insert(model.Task{ID: "4", Status: model.StatusCancelled})
		return r
	}

	r := newRegistry()
	if n := r.RemoveFinished(); n != 3 {
		t.Errorf("RemoveFinished() = %d, want 3", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	r = newRegistry()
	if n := r.EvictFinished(1); n != 2 {
		t.Errorf("EvictFinished(1) = %d, want 2", n)
	}
	all := r.All()
	if len(all) != 2 || all[0].ID != "2" || all[1].ID != "4" {
		t.Errorf("after eviction got %v, want tasks 2 and 4", all)
	}

	if n := r.EvictFinished(5); n != 0 {
		t.Errorf("EvictFinished(5) = %d, want 0", n)
	}
	if !r.Remove("2") || r.Remove("2") {
		t.Error("Remove should report true once then false")
	}
}
