// Package reconcile compares an edit-mode snapshot with the current lists
// and syncs the difference to the remote service.
package reconcile

import "todosync/internal/service"

// Changes classifies every list and task of snapshot and current state.
// Entries follow the order of current, deletions the order of snapshot.
type Changes struct {
	AddedLists   []service.TodoList
	DeletedLists []service.TodoList
	EditedLists  []service.TodoList

	AddedTasks   []service.Task
	EditedTasks  []service.Task
	DeletedTasks []service.Task
}

// Empty reports whether there is nothing to sync.
func (c Changes) Empty() bool {
	return c.Count() == 0
}

// Count returns the number of classified changes.
func (c Changes) Count() int {
	return len(c.AddedLists) + len(c.DeletedLists) + len(c.EditedLists) +
		len(c.AddedTasks) + len(c.EditedTasks) + len(c.DeletedTasks)
}

// Diff compares snapshot against current.
//
// Tasks of a deleted list are not reported: deleting the list removes them
// on the server. Tasks of a new list are all reported as added.
func Diff(snapshot, current []service.TodoList) Changes {
	var c Changes

	old := make(map[string]service.TodoList, len(snapshot))
	for _, l := range snapshot {
		old[l.ID] = l
	}
	cur := make(map[string]struct{}, len(current))
	for _, l := range current {
		cur[l.ID] = struct{}{}
	}

	for _, l := range current {
		prev, existed := old[l.ID]
		if !existed {
			c.AddedLists = append(c.AddedLists, l)
			c.AddedTasks = append(c.AddedTasks, l.Tasks...)
			continue
		}
		if prev.Title != l.Title {
			c.EditedLists = append(c.EditedLists, l)
		}
		diffTasks(&c, prev, l)
	}

	for _, l := range snapshot {
		if _, ok := cur[l.ID]; !ok {
			c.DeletedLists = append(c.DeletedLists, l)
		}
	}
	return c
}

// diffTasks classifies the tasks of a list present on both sides.
func diffTasks(c *Changes, prev, next service.TodoList) {
	before := make(map[string]service.Task, len(prev.Tasks))
	for _, t := range prev.Tasks {
		before[t.ID] = t
	}
	after := make(map[string]struct{}, len(next.Tasks))

	for _, t := range next.Tasks {
		after[t.ID] = struct{}{}
		o, ok := before[t.ID]
		switch {
		case !ok:
			c.AddedTasks = append(c.AddedTasks, t)
		case o.Title != t.Title || o.Status != t.Status:
			c.EditedTasks = append(c.EditedTasks, t)
		}
	}
	for _, t := range prev.Tasks {
		if _, ok := after[t.ID]; !ok {
			c.DeletedTasks = append(c.DeletedTasks, t)
		}
	}
}
