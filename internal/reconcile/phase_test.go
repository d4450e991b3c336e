package reconcile

import "testing"

func TestTransition_HappyPath(t *testing.T) {
	steps := []struct {
		from Phase
		ev   Event
		to   Phase
	}{
		{PhaseDiffing, diffComputed{}, PhaseCreatingLists},
		{PhaseCreatingLists, listsCreated{}, PhaseCreatingTasks},
		{PhaseCreatingTasks, tasksCreated{}, PhaseMutating},
		{PhaseMutating, mutationsApplied{}, PhaseReordering},
		{PhaseReordering, reordersApplied{}, PhaseRemapping},
		{PhaseRemapping, remapped{}, PhaseIdle},
	}
	for _, s := range steps {
		got, ok := transition(s.from, s.ev)
		if !ok || got != s.to {
			t.Errorf("transition(%s, %T) = %s, %v; want %s", s.from, s.ev, got, ok, s.to)
		}
	}
}

func TestTransition_RejectsOutOfOrderEvents(t *testing.T) {
	bad := []struct {
		from Phase
		ev   Event
	}{
		{PhaseDiffing, tasksCreated{}},
		{PhaseCreatingLists, tasksCreated{}},
		{PhaseCreatingTasks, listsCreated{}},
		{PhaseIdle, diffComputed{}},
		{PhaseRemapping, nil},
	}
	for _, b := range bad {
		if got, ok := transition(b.from, b.ev); ok {
			t.Errorf("transition(%s, %T) accepted, moved to %s", b.from, b.ev, got)
		}
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseCreatingTasks.String() != "creating-tasks" {
		t.Errorf("unexpected name %q", PhaseCreatingTasks.String())
	}
	if Phase(42).String() != "phase(42)" {
		t.Errorf("unexpected name %q", Phase(42).String())
	}
}
