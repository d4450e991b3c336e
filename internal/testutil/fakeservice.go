// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"todosync/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrInjected is returned by calls failed through error injection.
var ErrInjected = errors.New("injected failure")

// Call records one remote call.
type Call struct {
	Op   service.Op
	Args []string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Server ids are issued as srv-L<n> for lists and srv-T<n> for tasks.
type FakeService struct {
	mu     sync.Mutex
	lists  []service.TodoList
	nextL  int
	nextT  int
	calls  []Call
	before func(op service.Op, args []string)

	// Error injection for testing
	OpErr     map[service.Op]error // every call of an op fails
	FailTitle map[string]bool      // creates with this title fail
	FailID    map[string]bool      // calls naming this list or task id fail
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		OpErr:     make(map[service.Op]error),
		FailTitle: make(map[string]bool),
		FailID:    make(map[string]bool),
	}
}

// AddList adds a list with a fixed id.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TodoList{ID: id, Title: title, Tasks: []service.Task{}})
}

// AddTask adds a task with a fixed id to a list.
func (f *FakeService) AddTask(listID, taskID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		if f.lists[i].ID == listID {
			f.lists[i].Tasks = append(f.lists[i].Tasks, service.Task{
				ID:         taskID,
				Title:      title,
				Status:     service.StatusNew,
				TodoListID: listID,
			})
			return
		}
	}
}

// BeforeCall installs a hook that runs at the start of every call, outside
// the service lock. Tests use it to block or observe calls.
func (f *FakeService) BeforeCall(fn func(op service.Op, args []string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = fn
}

// Calls returns a copy of the call log.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf returns the logged calls of one op.
func (f *FakeService) CallsOf(op service.Op) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Lists returns a deep copy of the server state.
func (f *FakeService) Lists() []service.TodoList {
	f.mu.Lock()
	defer f.mu.Unlock()
	return service.CloneLists(f.lists)
}

// begin logs the call, runs the hook and checks error injection.
// The returned error is already wrapped as a remote error.
func (f *FakeService) begin(op service.Op, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, Args: args})
	hook := f.before
	f.mu.Unlock()

	if hook != nil {
		hook(op, args)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.OpErr[op]; err != nil {
		return service.Rejected(op, err)
	}
	for _, a := range args {
		if f.FailID[a] || f.FailTitle[a] {
			return service.Rejected(op, fmt.Errorf("%w: %s", ErrInjected, a))
		}
	}
	return nil
}

func (f *FakeService) listIndex(id string) int {
	return service.FindList(f.lists, id)
}

// FetchAllLists implements service.Service.
func (f *FakeService) FetchAllLists(ctx context.Context) ([]service.TodoList, error) {
	if err := f.begin(service.OpFetchAllLists); err != nil {
		return nil, err
	}
	return f.Lists(), nil
}

// FetchTasks implements service.Service.
func (f *FakeService) FetchTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if err := f.begin(service.OpFetchTasks, listID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return nil, service.Rejected(service.OpFetchTasks, ErrNotFound)
	}
	out := make([]service.Task, len(f.lists[i].Tasks))
	copy(out, f.lists[i].Tasks)
	return out, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, title string) (service.TodoList, error) {
	if err := f.begin(service.OpCreateList, title); err != nil {
		return service.TodoList{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextL++
	l := service.TodoList{ID: fmt.Sprintf("srv-L%d", f.nextL), Title: title, Tasks: []service.Task{}}
	f.lists = append(f.lists, l)
	return service.TodoList{ID: l.ID, Title: l.Title, Tasks: []service.Task{}}, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID, title string) (service.Task, error) {
	if err := f.begin(service.OpCreateTask, listID, title); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return service.Task{}, service.Rejected(service.OpCreateTask, ErrNotFound)
	}
	f.nextT++
	t := service.Task{
		ID:         fmt.Sprintf("srv-T%d", f.nextT),
		Title:      title,
		Status:     service.StatusNew,
		TodoListID: listID,
	}
	f.lists[i].Tasks = append(f.lists[i].Tasks, t)
	return t, nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if err := f.begin(service.OpDeleteList, listID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return service.Rejected(service.OpDeleteList, ErrNotFound)
	}
	f.lists = append(f.lists[:i], f.lists[i+1:]...)
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if err := f.begin(service.OpDeleteTask, listID, taskID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, j, err := f.taskIndex(service.OpDeleteTask, listID, taskID)
	if err != nil {
		return err
	}
	f.lists[i].Tasks = append(f.lists[i].Tasks[:j], f.lists[i].Tasks[j+1:]...)
	return nil
}

// RenameList implements service.Service.
func (f *FakeService) RenameList(ctx context.Context, listID, title string) error {
	if err := f.begin(service.OpRenameList, listID, title); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listIndex(listID)
	if i < 0 {
		return service.Rejected(service.OpRenameList, ErrNotFound)
	}
	f.lists[i].Title = title
	return nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, listID, taskID string, task service.Task) error {
	if err := f.begin(service.OpUpdateTask, listID, taskID, task.Title); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, j, err := f.taskIndex(service.OpUpdateTask, listID, taskID)
	if err != nil {
		return err
	}
	f.lists[i].Tasks[j].Title = task.Title
	f.lists[i].Tasks[j].Status = task.Status
	return nil
}

// ReorderTasks implements service.Service.
func (f *FakeService) ReorderTasks(ctx context.Context, listID, taskID, previousID string) error {
	if err := f.begin(service.OpReorderTasks, listID, taskID, previousID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, j, err := f.taskIndex(service.OpReorderTasks, listID, taskID)
	if err != nil {
		return err
	}
	tasks := f.lists[i].Tasks
	moved := tasks[j]
	rest := append(tasks[:j:j], tasks[j+1:]...)

	at := 0
	if previousID != "" {
		at = -1
		for k, t := range rest {
			if t.ID == previousID {
				at = k + 1
				break
			}
		}
		if at < 0 {
			return service.Rejected(service.OpReorderTasks, ErrNotFound)
		}
	}
	out := make([]service.Task, 0, len(tasks))
	out = append(out, rest[:at]...)
	out = append(out, moved)
	out = append(out, rest[at:]...)
	f.lists[i].Tasks = out
	return nil
}

func (f *FakeService) taskIndex(op service.Op, listID, taskID string) (int, int, error) {
	i := f.listIndex(listID)
	if i < 0 {
		return -1, -1, service.Rejected(op, ErrNotFound)
	}
	j := f.lists[i].FindTask(taskID)
	if j < 0 {
		return -1, -1, service.Rejected(op, ErrNotFound)
	}
	return i, j, nil
}
