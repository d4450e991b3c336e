package reconcile

import "fmt"

// Phase is a state of the commit state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDiffing
	PhaseCreatingLists
	PhaseCreatingTasks
	PhaseMutating
	PhaseReordering
	PhaseRemapping
)

var phaseNames = [...]string{
	PhaseIdle:          "idle",
	PhaseDiffing:       "diffing",
	PhaseCreatingLists: "creating-lists",
	PhaseCreatingTasks: "creating-tasks",
	PhaseMutating:      "mutating",
	PhaseReordering:    "reordering",
	PhaseRemapping:     "remapping",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Event is the outcome of one phase. The set of events is closed.
type Event interface {
	event()
}

type diffComputed struct{ changes Changes }

type listsCreated struct{ created, failed int }

type tasksCreated struct{ created, updated, failed int }

type mutationsApplied struct{ deleted, updated, failed int }

type reordersApplied struct{ reordered, failed int }

type remapped struct{}

func (diffComputed) event()     {}
func (listsCreated) event()     {}
func (tasksCreated) event()     {}
func (mutationsApplied) event() {}
func (reordersApplied) event()  {}
func (remapped) event()         {}

// transition returns the phase that follows p once ev has been observed.
// ok is false when ev cannot occur in p.
func transition(p Phase, ev Event) (next Phase, ok bool) {
	switch ev.(type) {
	case diffComputed:
		if p == PhaseDiffing {
			return PhaseCreatingLists, true
		}
	case listsCreated:
		if p == PhaseCreatingLists {
			return PhaseCreatingTasks, true
		}
	case tasksCreated:
		if p == PhaseCreatingTasks {
			return PhaseMutating, true
		}
	case mutationsApplied:
		if p == PhaseMutating {
			return PhaseReordering, true
		}
	case reordersApplied:
		if p == PhaseReordering {
			return PhaseRemapping, true
		}
	case remapped:
		if p == PhaseRemapping {
			return PhaseIdle, true
		}
	}
	return p, false
}
