package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"todosync/internal/reconcile"
	"todosync/internal/service"
)

func init() {
	color.NoColor = true
}

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	FormatTask(&buf, 3, service.Task{Title: "Buy\nmilk"})
	FormatTask(&buf, 12, service.Task{Title: "  ", Status: service.StatusCompleted})

	want := "       3  [ ] Buy milk\n      12  [x] (untitled)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatListHeader(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, 'b', service.TodoList{Title: "Work"})
	want := "------------\nb  Work\n------------\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, 'a', service.TodoList{Title: "Work", Tasks: []service.Task{
		{Title: "x"}, {Title: "y", Status: service.StatusCompleted},
	}})
	if buf.String() != "a  Work (1/2)\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatChanges(t *testing.T) {
	var buf bytes.Buffer
	FormatChanges(&buf, reconcile.Changes{
		AddedLists:   []service.TodoList{{Title: "New"}},
		DeletedTasks: []service.Task{{Title: "Old task"}},
	})
	out := buf.String()
	for _, want := range []string{"CHANGE", "list", "New", "Old task"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "%d change(s) may not have persisted", 2)
	if buf.String() != "warning: 2 change(s) may not have persisted\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
