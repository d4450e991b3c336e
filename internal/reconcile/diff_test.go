package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"todosync/internal/service"
)

func task(id, title, listID string) service.Task {
	return service.Task{ID: id, Title: title, TodoListID: listID, Status: service.StatusNew}
}

func taskIDs(tasks []service.Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func listIDs(lists []service.TodoList) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiff_ScenarioA_EditAndAddTask(t *testing.T) {
	snapshot := []service.TodoList{
		{ID: "L1", Title: "Work", Tasks: []service.Task{task("T1", "Buy milk", "L1")}},
	}
	current := []service.TodoList{
		{ID: "L1", Title: "Work", Tasks: []service.Task{
			task("T1", "Buy oat milk", "L1"),
			task("T2", "Call mom", "L1"),
		}},
	}

	c := Diff(snapshot, current)

	if len(c.EditedTasks) != 1 || c.EditedTasks[0].ID != "T1" || c.EditedTasks[0].Title != "Buy oat milk" {
		t.Errorf("unexpected edited tasks: %#v", c.EditedTasks)
	}
	if !equalStrings(taskIDs(c.AddedTasks), []string{"T2"}) {
		t.Errorf("unexpected added tasks: %v", taskIDs(c.AddedTasks))
	}
	if len(c.DeletedTasks) != 0 {
		t.Errorf("unexpected deleted tasks: %v", taskIDs(c.DeletedTasks))
	}
	if len(c.AddedLists)+len(c.DeletedLists)+len(c.EditedLists) != 0 {
		t.Errorf("expected no list changes, got %#v", c)
	}
}

func TestDiff_ScenarioC_DeletedListHidesItsTasks(t *testing.T) {
	snapshot := []service.TodoList{
		{ID: "L1", Title: "Work", Tasks: []service.Task{task("T1", "Buy milk", "L1")}},
	}

	c := Diff(snapshot, []service.TodoList{})

	if !equalStrings(listIDs(c.DeletedLists), []string{"L1"}) {
		t.Errorf("expected L1 deleted, got %v", listIDs(c.DeletedLists))
	}
	if len(c.DeletedTasks) != 0 {
		t.Errorf("expected no task deletions, got %v", taskIDs(c.DeletedTasks))
	}
}

func TestDiff_NewListTasksAreAdded(t *testing.T) {
	current := []service.TodoList{
		{ID: "tmp-L1", Title: "New", Tasks: []service.Task{
			task("tmp-T1", "First", "tmp-L1"),
			task("tmp-T2", "Second", "tmp-L1"),
		}},
	}

	c := Diff([]service.TodoList{}, current)

	if !equalStrings(listIDs(c.AddedLists), []string{"tmp-L1"}) {
		t.Errorf("unexpected added lists %v", listIDs(c.AddedLists))
	}
	if !equalStrings(taskIDs(c.AddedTasks), []string{"tmp-T1", "tmp-T2"}) {
		t.Errorf("unexpected added tasks %v", taskIDs(c.AddedTasks))
	}
}

func TestDiff_RenamedListAndDeletedTask(t *testing.T) {
	snapshot := []service.TodoList{
		{ID: "L1", Title: "Work", Tasks: []service.Task{task("T1", "a", "L1"), task("T2", "b", "L1")}},
		{ID: "L2", Title: "Home", Tasks: []service.Task{}},
	}
	current := []service.TodoList{
		{ID: "L1", Title: "Office", Tasks: []service.Task{task("T2", "b", "L1")}},
		{ID: "L2", Title: "Home", Tasks: []service.Task{}},
	}

	c := Diff(snapshot, current)

	if !equalStrings(listIDs(c.EditedLists), []string{"L1"}) {
		t.Errorf("unexpected edited lists %v", listIDs(c.EditedLists))
	}
	if !equalStrings(taskIDs(c.DeletedTasks), []string{"T1"}) {
		t.Errorf("unexpected deleted tasks %v", taskIDs(c.DeletedTasks))
	}
	if c.Count() != 2 {
		t.Errorf("expected 2 changes, got %d", c.Count())
	}
}

func TestDiff_StatusChangeIsEdit(t *testing.T) {
	snapshot := []service.TodoList{{ID: "L1", Title: "Work", Tasks: []service.Task{task("T1", "a", "L1")}}}
	current := service.CloneLists(snapshot)
	current[0].Tasks[0].Status = service.StatusCompleted

	c := Diff(snapshot, current)
	if !equalStrings(taskIDs(c.EditedTasks), []string{"T1"}) {
		t.Errorf("expected T1 edited, got %v", taskIDs(c.EditedTasks))
	}
}

func TestDiff_ReorderOnlyIsNoChange(t *testing.T) {
	snapshot := []service.TodoList{{ID: "L1", Title: "Work", Tasks: []service.Task{task("T1", "a", "L1"), task("T2", "b", "L1")}}}
	current := service.CloneLists(snapshot)
	current[0].Tasks[0], current[0].Tasks[1] = current[0].Tasks[1], current[0].Tasks[0]

	if c := Diff(snapshot, current); !c.Empty() {
		t.Errorf("expected no changes, got %#v", c)
	}
}

// randomLists builds a random list-of-lists drawing ids from a small pool
// so that two draws overlap.
func randomLists(r *rand.Rand) []service.TodoList {
	var lists []service.TodoList
	for i := 0; i < 4; i++ {
		if r.Intn(3) == 0 {
			continue
		}
		id := fmt.Sprintf("L%d", i)
		l := service.TodoList{ID: id, Title: fmt.Sprintf("title-%d", r.Intn(2))}
		for j := 0; j < 5; j++ {
			if r.Intn(2) == 0 {
				continue
			}
			l.Tasks = append(l.Tasks, task(fmt.Sprintf("%s-T%d", id, j), fmt.Sprintf("t-%d", r.Intn(2)), id))
		}
		lists = append(lists, l)
	}
	return lists
}

func TestDiff_PartitionProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 500; n++ {
		s, c := randomLists(r), randomLists(r)
		ch := Diff(s, c)

		// every list of S ∪ C lands in exactly one class
		class := make(map[string]int)
		for _, l := range ch.AddedLists {
			class[l.ID]++
		}
		for _, l := range ch.DeletedLists {
			class[l.ID]++
		}
		for _, l := range ch.EditedLists {
			class[l.ID]++
		}
		for _, l := range append(append([]service.TodoList{}, s...), c...) {
			if class[l.ID] > 1 {
				t.Fatalf("list %s in %d classes (case %d)", l.ID, class[l.ID], n)
			}
		}

		tclass := make(map[string]int)
		for _, group := range [][]service.Task{ch.AddedTasks, ch.EditedTasks, ch.DeletedTasks} {
			for _, tk := range group {
				tclass[tk.ID]++
				if tclass[tk.ID] > 1 {
					t.Fatalf("task %s in more than one class (case %d)", tk.ID, n)
				}
			}
		}

		// idempotence
		if d := Diff(s, s); !d.Empty() {
			t.Fatalf("diff(S, S) not empty: %#v", d)
		}
		if d := Diff(c, service.CloneLists(c)); !d.Empty() {
			t.Fatalf("diff(C, copy(C)) not empty: %#v", d)
		}
	}
}
