package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"todosync/internal/ids"
	"todosync/internal/service"
	"todosync/internal/store"
)

// ErrUnsynced is returned when a direct change needs the server id of a
// list whose create failed in an earlier commit.
var ErrUnsynced = errors.New("list not created on the server yet, retry with edit and commit")

// Applier applies a single user change to the session.
type Applier interface {
	AddList(ctx context.Context, title string) (service.TodoList, error)
	AddTask(ctx context.Context, listID, title string) (service.Task, error)
	RenameList(ctx context.Context, listID, title string) error
	UpdateTask(ctx context.Context, task service.Task) error
	DeleteList(ctx context.Context, listID string) error
	DeleteTask(ctx context.Context, listID, taskID string) error
	SwapTasks(ctx context.Context, listID, taskA, taskB string) error
	MoveList(ctx context.Context, listID string, index int) error
}

// NewApplier returns a staging applier while sess is in edit mode and a
// direct one otherwise.
func NewApplier(svc service.Service, sess *store.Session) Applier {
	if sess.Editing {
		return &Staged{sess: sess}
	}
	return &Direct{svc: svc, sess: sess}
}

// Staged records changes locally with placeholder ids. Nothing is sent
// until commit.
type Staged struct {
	sess *store.Session
}

func (s *Staged) AddList(ctx context.Context, title string) (service.TodoList, error) {
	l := service.TodoList{ID: ids.NewPlaceholder(), Title: title, Tasks: []service.Task{}}
	s.sess.AddList(l)
	return l, nil
}

func (s *Staged) AddTask(ctx context.Context, listID, title string) (service.Task, error) {
	t := service.Task{ID: ids.NewPlaceholder(), Title: title, TodoListID: listID, Status: service.StatusNew}
	if err := s.sess.AddTask(t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

func (s *Staged) RenameList(ctx context.Context, listID, title string) error {
	return s.sess.RenameList(listID, title)
}

func (s *Staged) UpdateTask(ctx context.Context, task service.Task) error {
	return s.sess.UpdateTask(task)
}

func (s *Staged) DeleteList(ctx context.Context, listID string) error {
	return s.sess.DeleteList(listID)
}

func (s *Staged) DeleteTask(ctx context.Context, listID, taskID string) error {
	return s.sess.DeleteTask(listID, taskID)
}

func (s *Staged) SwapTasks(ctx context.Context, listID, taskA, taskB string) error {
	return s.sess.SwapTasks(listID, taskA, taskB)
}

func (s *Staged) MoveList(ctx context.Context, listID string, index int) error {
	return s.sess.MoveList(listID, index)
}

// Direct sends each change to the remote service and applies it to the
// session only when the call succeeds. Rejected calls are added to the
// session error counter.
//
// Lists and tasks that still carry a placeholder id were never created on
// the server. Changes to them stay local until a commit creates them.
type Direct struct {
	svc  service.Service
	sess *store.Session
}

func (d *Direct) fail(err error) error {
	if errors.Is(err, service.ErrRemoteRejected) {
		d.sess.RecordFailures(1)
	}
	glog.V(1).Infof("[direct]error = %s\n", err)
	return err
}

func (d *Direct) AddList(ctx context.Context, title string) (service.TodoList, error) {
	l, err := d.svc.CreateList(ctx, title)
	if err != nil {
		return service.TodoList{}, d.fail(err)
	}
	d.sess.AddList(l)
	return l, nil
}

func (d *Direct) AddTask(ctx context.Context, listID, title string) (service.Task, error) {
	if _, err := d.sess.List(listID); err != nil {
		return service.Task{}, err
	}
	if ids.IsPlaceholder(listID) {
		return service.Task{}, fmt.Errorf("%w: %s", ErrUnsynced, listID)
	}
	t, err := d.svc.CreateTask(ctx, listID, title)
	if err != nil {
		return service.Task{}, d.fail(err)
	}
	t.TodoListID = listID
	return t, d.sess.AddTask(t)
}

func (d *Direct) RenameList(ctx context.Context, listID, title string) error {
	if _, err := d.sess.List(listID); err != nil {
		return err
	}
	if ids.IsPlaceholder(listID) {
		return d.sess.RenameList(listID, title)
	}
	if err := d.svc.RenameList(ctx, listID, title); err != nil {
		return d.fail(err)
	}
	return d.sess.RenameList(listID, title)
}

func (d *Direct) UpdateTask(ctx context.Context, task service.Task) error {
	if err := d.lookupTask(task.TodoListID, task.ID); err != nil {
		return err
	}
	if ids.IsPlaceholder(task.ID) {
		return d.sess.UpdateTask(task)
	}
	if err := d.svc.UpdateTask(ctx, task.TodoListID, task.ID, task); err != nil {
		return d.fail(err)
	}
	return d.sess.UpdateTask(task)
}

func (d *Direct) DeleteList(ctx context.Context, listID string) error {
	if _, err := d.sess.List(listID); err != nil {
		return err
	}
	if ids.IsPlaceholder(listID) {
		return d.sess.DeleteList(listID)
	}
	if err := d.svc.DeleteList(ctx, listID); err != nil {
		return d.fail(err)
	}
	return d.sess.DeleteList(listID)
}

func (d *Direct) DeleteTask(ctx context.Context, listID, taskID string) error {
	if err := d.lookupTask(listID, taskID); err != nil {
		return err
	}
	if ids.IsPlaceholder(taskID) {
		return d.sess.DeleteTask(listID, taskID)
	}
	if err := d.svc.DeleteTask(ctx, listID, taskID); err != nil {
		return d.fail(err)
	}
	return d.sess.DeleteTask(listID, taskID)
}

// SwapTasks moves both tasks to each other's position on the server, lower
// position first so the second move sees a settled predecessor. Unsynced
// neighbours are skipped when picking the predecessor.
func (d *Direct) SwapTasks(ctx context.Context, listID, taskA, taskB string) error {
	list, err := d.sess.List(listID)
	if err != nil {
		return err
	}
	a, b := list.FindTask(taskA), list.FindTask(taskB)
	if a < 0 || b < 0 {
		return fmt.Errorf("%w: %s/%s", store.ErrTaskNotFound, taskA, taskB)
	}
	if a == b {
		return nil
	}
	if ids.IsPlaceholder(listID) || ids.IsPlaceholder(taskA) || ids.IsPlaceholder(taskB) {
		return d.sess.SwapTasks(listID, taskA, taskB)
	}

	order := make([]string, len(list.Tasks))
	for i, t := range list.Tasks {
		order[i] = t.ID
	}
	order[a], order[b] = order[b], order[a]

	lo, hi := min(a, b), max(a, b)
	for _, pos := range []int{lo, hi} {
		if err := d.svc.ReorderTasks(ctx, listID, order[pos], syncedBefore(order, pos)); err != nil {
			return d.fail(err)
		}
	}
	return d.sess.SwapTasks(listID, taskA, taskB)
}

// syncedBefore returns the nearest id before pos that has a server id, or
// "" when there is none.
func syncedBefore(order []string, pos int) string {
	for i := pos - 1; i >= 0; i-- {
		if !ids.IsPlaceholder(order[i]) {
			return order[i]
		}
	}
	return ""
}

// MoveList only reorders locally; the remote service has no list order.
func (d *Direct) MoveList(ctx context.Context, listID string, index int) error {
	return d.sess.MoveList(listID, index)
}

func (d *Direct) lookupTask(listID, taskID string) error {
	list, err := d.sess.List(listID)
	if err != nil {
		return err
	}
	if list.FindTask(taskID) < 0 {
		return fmt.Errorf("%w: %s", store.ErrTaskNotFound, taskID)
	}
	return nil
}

// Pull replaces the session lists with the remote state. It is refused
// while editing so staged changes are never lost.
func Pull(ctx context.Context, svc service.Service, sess *store.Session, now time.Time) error {
	if sess.Editing {
		return store.ErrAlreadyEditing
	}
	lists, err := svc.FetchAllLists(ctx)
	if err != nil {
		sess.RecordFailures(1)
		return err
	}
	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []service.Task{}
		}
	}
	return sess.Replace(lists, now)
}
