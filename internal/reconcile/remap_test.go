package reconcile

import (
	"fmt"
	"sync"
	"testing"

	"todosync/internal/service"
)

func TestRemapper_RoundTrip(t *testing.T) {
	r := NewRemapper()
	r.RecordListCreated("tmp-L1", "srv-L1")
	r.RecordTaskCreated("tmp-T1", "srv-T1", "srv-L1")

	if got := r.ResolveListID("tmp-L1"); got != "srv-L1" {
		t.Errorf("expected srv-L1, got %q", got)
	}
	if got := r.ResolveListID("L7"); got != "L7" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if got := r.ResolveTaskID("tmp-T1"); got != "srv-T1" {
		t.Errorf("expected srv-T1, got %q", got)
	}
	if got := r.ResolveTaskID("tmp-L1"); got != "tmp-L1" {
		t.Errorf("list remaps must not leak into task ids, got %q", got)
	}
}

func TestRemapper_ApplyToLists(t *testing.T) {
	r := NewRemapper()
	r.RecordListCreated("tmp-L1", "srv-L1")
	r.RecordTaskCreated("tmp-T1", "srv-T1", "srv-L1")
	r.RecordTaskCreated("tmp-T2", "srv-T2", "L2")

	in := []service.TodoList{
		{ID: "tmp-L1", Title: "New", Tasks: []service.Task{task("tmp-T1", "First", "tmp-L1")}},
		{ID: "L2", Title: "Old", Tasks: []service.Task{task("T9", "x", "L2"), task("tmp-T2", "y", "L2")}},
	}
	out := r.ApplyToLists(in)

	if out[0].ID != "srv-L1" || out[0].Tasks[0].ID != "srv-T1" || out[0].Tasks[0].TodoListID != "srv-L1" {
		t.Errorf("new list not remapped: %#v", out[0])
	}
	if !equalStrings(taskIDs(out[1].Tasks), []string{"T9", "srv-T2"}) {
		t.Errorf("unexpected tasks %v", taskIDs(out[1].Tasks))
	}
	if in[0].ID != "tmp-L1" || in[0].Tasks[0].ID != "tmp-T1" {
		t.Error("input lists were mutated")
	}
}

func TestRemapper_ApplyToPendingReorder(t *testing.T) {
	r := NewRemapper()
	r.RecordListCreated("tmp-L1", "srv-L1")
	r.RecordTaskCreated("tmp-T1", "srv-T1", "srv-L1")

	lo, to := r.ApplyToPendingReorder(
		[]string{"L0", "tmp-L1"},
		map[string][]string{"tmp-L1": {"tmp-T1", "T5"}, "L0": {"T3"}},
	)
	if !equalStrings(lo, []string{"L0", "srv-L1"}) {
		t.Errorf("unexpected list order %v", lo)
	}
	if _, ok := to["tmp-L1"]; ok {
		t.Error("placeholder key must be rewritten")
	}
	if !equalStrings(to["srv-L1"], []string{"srv-T1", "T5"}) {
		t.Errorf("unexpected task order %v", to["srv-L1"])
	}
	if !equalStrings(to["L0"], []string{"T3"}) {
		t.Errorf("unexpected task order %v", to["L0"])
	}

	lo, to = r.ApplyToPendingReorder(nil, nil)
	if lo != nil || to != nil {
		t.Error("expected nil passthrough")
	}
}

func TestRemapper_ConcurrentRecords(t *testing.T) {
	r := NewRemapper()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordListCreated(fmt.Sprintf("tmp-%d", i), fmt.Sprintf("srv-%d", i))
			_ = r.ResolveListID("tmp-0")
		}()
	}
	wg.Wait()
	if n, _ := r.Len(); n != 50 {
		t.Errorf("expected 50 list remaps, got %d", n)
	}
}
