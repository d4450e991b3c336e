// Package store holds the canonical list state, the edit-mode snapshot and
// pending reorder instructions, and persists them between invocations.
package store

import (
	"errors"
	"fmt"
	"time"

	"todosync/internal/ids"
	"todosync/internal/service"
)

var (
	// ErrNotEditing is returned by operations that need an edit session.
	ErrNotEditing = errors.New("not in edit mode")

	// ErrAlreadyEditing is returned when entering edit mode twice.
	ErrAlreadyEditing = errors.New("already in edit mode")

	// ErrListNotFound is returned when a list id is unknown.
	ErrListNotFound = errors.New("list not found")

	// ErrTaskNotFound is returned when a task id is unknown.
	ErrTaskNotFound = errors.New("task not found")
)

// Session is the explicit client state: canonical lists, the edit-mode
// baseline, staged reorders and the remote failure counter.
type Session struct {
	// Lists is the canonical, locally mutated state.
	Lists []service.TodoList `json:"lists"`

	// Snapshot is the deep copy taken on edit-mode entry. It is only
	// used as the diff baseline and is never mutated.
	Snapshot []service.TodoList `json:"snapshot"`

	// Editing is true between EnterEditMode and commit or discard.
	Editing bool `json:"editing"`

	// ListOrder is the desired list order, recorded on list moves.
	ListOrder []string `json:"listOrder,omitempty"`

	// TaskOrders maps a list id to the desired task order, recorded on
	// task swaps.
	TaskOrders map[string][]string `json:"taskOrders,omitempty"`

	// ErrorCount counts remote calls that were rejected.
	ErrorCount int `json:"errorCount"`

	// SyncedAt is the time of the last pull or commit.
	SyncedAt time.Time `json:"syncedAt,omitempty"`
}

// EnterEditMode captures the snapshot and clears pending reorders.
func (s *Session) EnterEditMode() error {
	if s.Editing {
		return ErrAlreadyEditing
	}
	s.Snapshot = service.CloneLists(s.Lists)
	if s.Snapshot == nil {
		s.Snapshot = []service.TodoList{}
	}
	s.ListOrder = nil
	s.TaskOrders = nil
	s.Editing = true
	return nil
}

// Baseline returns the snapshot without entities that still carry a
// placeholder id. A create that failed in an earlier commit is therefore
// diffed as added again and retried by the next commit.
func (s *Session) Baseline() []service.TodoList {
	out := make([]service.TodoList, 0, len(s.Snapshot))
	for _, l := range s.Snapshot {
		if ids.IsPlaceholder(l.ID) {
			continue
		}
		tasks := make([]service.Task, 0, len(l.Tasks))
		for _, t := range l.Tasks {
			if !ids.IsPlaceholder(t.ID) {
				tasks = append(tasks, t)
			}
		}
		l.Tasks = tasks
		out = append(out, l)
	}
	return out
}

// Unsynced counts lists and tasks of the canonical state that were never
// created on the server. Tasks of an unsynced list are included.
func (s *Session) Unsynced() (lists, tasks int) {
	for _, l := range s.Lists {
		if ids.IsPlaceholder(l.ID) {
			lists++
		}
		for _, t := range l.Tasks {
			if ids.IsPlaceholder(t.ID) {
				tasks++
			}
		}
	}
	return lists, tasks
}

// Discard restores the lists captured on edit-mode entry and leaves edit mode.
func (s *Session) Discard() error {
	if !s.Editing {
		return ErrNotEditing
	}
	s.Lists = service.CloneLists(s.Snapshot)
	s.exitEditMode()
	return nil
}

// FinishCommit writes the reconciled lists back as canonical state and
// leaves edit mode.
func (s *Session) FinishCommit(lists []service.TodoList, at time.Time) {
	s.Lists = lists
	s.SyncedAt = at
	s.exitEditMode()
}

func (s *Session) exitEditMode() {
	s.Snapshot = nil
	s.ListOrder = nil
	s.TaskOrders = nil
	s.Editing = false
}

// Replace overwrites the canonical lists, e.g. after a pull.
func (s *Session) Replace(lists []service.TodoList, at time.Time) error {
	if s.Editing {
		return ErrAlreadyEditing
	}
	s.Lists = lists
	s.SyncedAt = at
	return nil
}

// RecordFailures adds n rejected calls to the error counter.
func (s *Session) RecordFailures(n int) {
	s.ErrorCount += n
}

// ResetErrors clears the error counter.
func (s *Session) ResetErrors() {
	s.ErrorCount = 0
}

// List returns the list with the given id.
func (s *Session) List(id string) (service.TodoList, error) {
	i := service.FindList(s.Lists, id)
	if i < 0 {
		return service.TodoList{}, fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	return s.Lists[i], nil
}

// AddList appends a list.
func (s *Session) AddList(list service.TodoList) {
	if list.Tasks == nil {
		list.Tasks = []service.Task{}
	}
	s.Lists = append(s.Lists, list)
}

// AddTask appends a task to the list named by task.TodoListID.
func (s *Session) AddTask(task service.Task) error {
	i, err := s.listIndex(task.TodoListID)
	if err != nil {
		return err
	}
	s.Lists[i].Tasks = append(s.Lists[i].Tasks, task)
	return nil
}

// SetTasks replaces the tasks of a list.
func (s *Session) SetTasks(listID string, tasks []service.Task) error {
	i, err := s.listIndex(listID)
	if err != nil {
		return err
	}
	s.Lists[i].Tasks = tasks
	return nil
}

// RenameList changes a list title.
func (s *Session) RenameList(listID, title string) error {
	i, err := s.listIndex(listID)
	if err != nil {
		return err
	}
	s.Lists[i].Title = title
	return nil
}

// UpdateTask replaces the task with the same id in task.TodoListID.
func (s *Session) UpdateTask(task service.Task) error {
	i, j, err := s.taskIndex(task.TodoListID, task.ID)
	if err != nil {
		return err
	}
	s.Lists[i].Tasks[j] = task
	return nil
}

// DeleteList removes a list and its tasks.
func (s *Session) DeleteList(listID string) error {
	i, err := s.listIndex(listID)
	if err != nil {
		return err
	}
	s.Lists = append(s.Lists[:i], s.Lists[i+1:]...)
	delete(s.TaskOrders, listID)
	return nil
}

// DeleteTask removes a task from its list.
func (s *Session) DeleteTask(listID, taskID string) error {
	i, j, err := s.taskIndex(listID, taskID)
	if err != nil {
		return err
	}
	tasks := s.Lists[i].Tasks
	s.Lists[i].Tasks = append(tasks[:j], tasks[j+1:]...)
	return nil
}

// SwapTasks exchanges the positions of two tasks in a list. In edit mode
// the resulting order is recorded as a pending reorder.
func (s *Session) SwapTasks(listID, taskA, taskB string) error {
	i, a, err := s.taskIndex(listID, taskA)
	if err != nil {
		return err
	}
	_, b, err := s.taskIndex(listID, taskB)
	if err != nil {
		return err
	}
	tasks := s.Lists[i].Tasks
	tasks[a], tasks[b] = tasks[b], tasks[a]

	if s.Editing {
		order := make([]string, len(tasks))
		for k, t := range tasks {
			order[k] = t.ID
		}
		if s.TaskOrders == nil {
			s.TaskOrders = make(map[string][]string)
		}
		s.TaskOrders[listID] = order
	}
	return nil
}

// MoveList moves a list to index (clamped). In edit mode the resulting
// order is recorded as a pending reorder.
func (s *Session) MoveList(listID string, index int) error {
	i, err := s.listIndex(listID)
	if err != nil {
		return err
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.Lists) {
		index = len(s.Lists) - 1
	}
	list := s.Lists[i]
	rest := append(s.Lists[:i:i], s.Lists[i+1:]...)
	moved := make([]service.TodoList, 0, len(s.Lists))
	moved = append(moved, rest[:index]...)
	moved = append(moved, list)
	moved = append(moved, rest[index:]...)
	s.Lists = moved

	if s.Editing {
		s.ListOrder = make([]string, len(moved))
		for k, l := range moved {
			s.ListOrder[k] = l.ID
		}
	}
	return nil
}

func (s *Session) listIndex(id string) (int, error) {
	i := service.FindList(s.Lists, id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	return i, nil
}

func (s *Session) taskIndex(listID, taskID string) (int, int, error) {
	i, err := s.listIndex(listID)
	if err != nil {
		return -1, -1, err
	}
	j := s.Lists[i].FindTask(taskID)
	if j < 0 {
		return -1, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return i, j, nil
}
