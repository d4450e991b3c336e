package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/golang/glog"

	"todosync/internal/ids"
	"todosync/internal/service"
	"todosync/internal/store"
)

// Report summarizes a commit. Failed counts rejected calls and calls that
// could not be issued because a dependency failed.
type Report struct {
	Changes Changes

	CreatedLists int
	CreatedTasks int
	Deleted      int
	Updated      int
	Reordered    int
	Failed       int
}

// Option configures a Committer.
type Option func(*Committer)

// WithConcurrency caps the number of in-flight calls per phase.
func WithConcurrency(n int) Option {
	return func(c *Committer) { c.limit = n }
}

// WithoutReorder keeps pending task reorders local.
func WithoutReorder() Option {
	return func(c *Committer) { c.reorder = false }
}

// WithPhaseHook calls fn on entry to every phase.
func WithPhaseHook(fn func(Phase)) Option {
	return func(c *Committer) { c.onPhase = fn }
}

// WithClock overrides the time source used for SyncedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Committer) { c.now = now }
}

// Committer syncs an edit session to the remote service.
type Committer struct {
	svc     service.Service
	limit   int
	reorder bool
	onPhase func(Phase)
	now     func() time.Time
}

// NewCommitter creates a Committer that issues calls against svc.
func NewCommitter(svc service.Service, opts ...Option) *Committer {
	c := &Committer{
		svc:     svc,
		reorder: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit diffs the session against its snapshot, issues the resulting
// calls phase by phase and writes the remapped lists back into sess.
//
// Remote failures never abort the commit: they are counted in the report
// and added to sess.ErrorCount. The only error is a session that is not
// in edit mode.
func (c *Committer) Commit(ctx context.Context, sess *store.Session) (Report, error) {
	if !sess.Editing {
		return Report{}, store.ErrNotEditing
	}

	run := &commitRun{
		Committer: c,
		sess:      sess,
		remap:     NewRemapper(),
	}

	phase := PhaseDiffing
	for phase != PhaseIdle {
		if c.onPhase != nil {
			c.onPhase(phase)
		}
		ev := run.step(ctx, phase)
		next, ok := transition(phase, ev)
		if !ok {
			return run.report, fmt.Errorf("commit: unexpected %T in phase %s", ev, phase)
		}
		phase = next
	}
	if c.onPhase != nil {
		c.onPhase(PhaseIdle)
	}

	sess.RecordFailures(run.report.Failed)
	glog.V(1).Infof("[commit]done changes=%d failed=%d\n", run.report.Changes.Count(), run.report.Failed)
	return run.report, nil
}

// commitRun holds the state of one commit.
type commitRun struct {
	*Committer
	sess   *store.Session
	remap  *Remapper
	report Report

	// pending reorders with server ids, set after task creation
	taskOrders map[string][]string
}

func (r *commitRun) step(ctx context.Context, p Phase) Event {
	switch p {
	case PhaseDiffing:
		return r.diff()
	case PhaseCreatingLists:
		return r.createLists(ctx)
	case PhaseCreatingTasks:
		return r.createTasks(ctx)
	case PhaseMutating:
		return r.mutate(ctx)
	case PhaseReordering:
		return r.reorderTasks(ctx)
	case PhaseRemapping:
		return r.finish()
	}
	return nil
}

func (r *commitRun) diff() Event {
	ch := Diff(r.sess.Baseline(), r.sess.Lists)
	r.report.Changes = ch
	glog.V(1).Infof("[commit]diff lists +%d -%d ~%d tasks +%d -%d ~%d\n",
		len(ch.AddedLists), len(ch.DeletedLists), len(ch.EditedLists),
		len(ch.AddedTasks), len(ch.DeletedTasks), len(ch.EditedTasks))
	return diffComputed{changes: ch}
}

func (r *commitRun) createLists(ctx context.Context) Event {
	added := r.report.Changes.AddedLists
	calls := make([]call, len(added))
	for i, l := range added {
		calls[i] = func(ctx context.Context) error {
			created, err := r.svc.CreateList(ctx, l.Title)
			if err != nil {
				glog.V(1).Infof("[commit]create list %q error = %s\n", l.Title, err)
				return err
			}
			r.remap.RecordListCreated(l.ID, created.ID)
			glog.V(2).Infof("[commit]list %s->%s\n", l.ID, created.ID)
			return nil
		}
	}

	failed := countFailed(runBatch(ctx, r.limit, calls))
	ev := listsCreated{created: len(calls) - failed, failed: failed}
	r.report.CreatedLists = ev.created
	r.report.Failed += ev.failed
	return ev
}

// createTasks creates the added tasks of each list in local order. The
// remote service appends after the current last task, so creates within a
// list run one after another while separate lists run concurrently.
func (r *commitRun) createTasks(ctx context.Context) Event {
	var groups []taskGroup
	index := make(map[string]int)
	skipped := 0
	for _, t := range r.report.Changes.AddedTasks {
		listID := r.remap.ResolveListID(t.TodoListID)
		if ids.IsPlaceholder(listID) {
			// the parent list was never created
			glog.V(1).Infof("[commit]skip task %q: list %s has no server id\n", t.Title, listID)
			skipped++
			continue
		}
		i, ok := index[listID]
		if !ok {
			i = len(groups)
			index[listID] = i
			groups = append(groups, taskGroup{listID: listID})
		}
		groups[i].tasks = append(groups[i].tasks, t)
	}

	calls := make([]call, len(groups))
	for i := range groups {
		g := &groups[i]
		calls[i] = func(ctx context.Context) error {
			for _, t := range g.tasks {
				r.createTask(ctx, g, t)
			}
			return nil
		}
	}
	_ = runBatch(ctx, r.limit, calls)

	ev := tasksCreated{failed: skipped}
	for _, g := range groups {
		ev.created += g.created
		ev.updated += g.updated
		ev.failed += g.failed
	}
	r.report.CreatedTasks = ev.created
	r.report.Updated += ev.updated
	r.report.Failed += ev.failed

	// reorder instructions may only reference ids the server knows
	_, r.taskOrders = r.remap.ApplyToPendingReorder(r.sess.ListOrder, r.sess.TaskOrders)
	return ev
}

// taskGroup is the added tasks of one list and the outcome of creating
// them. Only the call that owns the group writes to it.
type taskGroup struct {
	listID string
	tasks  []service.Task

	created, updated, failed int
}

// createTask creates t and, when the server picked a different status,
// sets the staged one. The two calls are counted separately.
func (r *commitRun) createTask(ctx context.Context, g *taskGroup, t service.Task) {
	created, err := r.svc.CreateTask(ctx, g.listID, t.Title)
	if err != nil {
		glog.V(1).Infof("[commit]create task %q error = %s\n", t.Title, err)
		g.failed++
		return
	}
	r.remap.RecordTaskCreated(t.ID, created.ID, g.listID)
	g.created++
	glog.V(2).Infof("[commit]task %s->%s\n", t.ID, created.ID)

	if t.Status == created.Status {
		return
	}
	upd := t
	upd.ID = created.ID
	upd.TodoListID = g.listID
	if err := r.svc.UpdateTask(ctx, g.listID, created.ID, upd); err != nil {
		glog.V(1).Infof("[commit]status of task %s error = %s\n", created.ID, err)
		g.failed++
		return
	}
	g.updated++
}

func (r *commitRun) mutate(ctx context.Context) Event {
	ch := r.report.Changes
	var calls []call
	var kinds []mutationKind
	skipped := 0

	add := func(kind mutationKind, c call) {
		calls = append(calls, c)
		kinds = append(kinds, kind)
	}

	for _, l := range ch.DeletedLists {
		if ids.IsPlaceholder(l.ID) {
			continue // never reached the server
		}
		add(opDelete, func(ctx context.Context) error {
			return r.svc.DeleteList(ctx, l.ID)
		})
	}
	for _, t := range ch.DeletedTasks {
		if ids.IsPlaceholder(t.ID) || ids.IsPlaceholder(t.TodoListID) {
			continue
		}
		add(opDelete, func(ctx context.Context) error {
			return r.svc.DeleteTask(ctx, t.TodoListID, t.ID)
		})
	}
	for _, l := range ch.EditedLists {
		if ids.IsPlaceholder(l.ID) {
			skipped++
			continue
		}
		add(opUpdate, func(ctx context.Context) error {
			return r.svc.RenameList(ctx, l.ID, l.Title)
		})
	}
	for _, t := range ch.EditedTasks {
		if ids.IsPlaceholder(t.ID) || ids.IsPlaceholder(t.TodoListID) {
			skipped++
			continue
		}
		add(opUpdate, func(ctx context.Context) error {
			return r.svc.UpdateTask(ctx, t.TodoListID, t.ID, t)
		})
	}

	errs := runBatch(ctx, r.limit, calls)
	ev := mutationsApplied{failed: skipped}
	for i, err := range errs {
		switch {
		case err != nil:
			glog.V(1).Infof("[commit]%s error = %s\n", kinds[i], err)
			ev.failed++
		case kinds[i] == opDelete:
			ev.deleted++
		default:
			ev.updated++
		}
	}
	r.report.Deleted += ev.deleted
	r.report.Updated += ev.updated
	r.report.Failed += ev.failed
	return ev
}

type mutationKind string

const (
	opDelete mutationKind = "delete"
	opUpdate mutationKind = "update"
)

func (r *commitRun) reorderTasks(ctx context.Context) Event {
	if !r.reorder || len(r.taskOrders) == 0 {
		return reordersApplied{}
	}

	lists := r.remap.ApplyToLists(r.sess.Lists)
	listIDs := make([]string, 0, len(r.taskOrders))
	for id := range r.taskOrders {
		listIDs = append(listIDs, id)
	}
	sort.Strings(listIDs)

	var calls []call
	for _, listID := range listIDs {
		i := service.FindList(lists, listID)
		if i < 0 || ids.IsPlaceholder(listID) {
			continue // list deleted or never created
		}
		order := syncableOrder(r.taskOrders[listID], lists[i])
		if len(order) == 0 {
			continue
		}
		calls = append(calls, func(ctx context.Context) error {
			// each move depends on the previous one, so a list is sequential
			prev := ""
			for _, id := range order {
				if err := r.svc.ReorderTasks(ctx, listID, id, prev); err != nil {
					glog.V(1).Infof("[commit]reorder %s error = %s\n", listID, err)
					return err
				}
				prev = id
			}
			return nil
		})
	}

	failed := countFailed(runBatch(ctx, r.limit, calls))
	ev := reordersApplied{reordered: len(calls) - failed, failed: failed}
	r.report.Reordered = ev.reordered
	r.report.Failed += ev.failed
	return ev
}

// syncableOrder keeps the ids of order that still exist in list and have a
// server id.
func syncableOrder(order []string, list service.TodoList) []string {
	var out []string
	for _, id := range order {
		if ids.IsPlaceholder(id) || list.FindTask(id) < 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (r *commitRun) finish() Event {
	nl, nt := r.remap.Len()
	glog.V(1).Infof("[commit]remap lists=%d tasks=%d\n", nl, nt)
	r.sess.FinishCommit(r.remap.ApplyToLists(r.sess.Lists), r.now())
	return remapped{}
}
