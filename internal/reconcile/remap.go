package reconcile

import (
	"sync"

	"todosync/internal/service"
)

type taskRemap struct {
	newID      string
	todoListID string
}

// Remapper tracks placeholder to server id pairs produced by create calls
// of one commit and rewrites references to them. Each id is recorded at
// most once; concurrent creates record distinct ids.
type Remapper struct {
	mu    sync.RWMutex
	lists map[string]string
	tasks map[string]taskRemap
}

// NewRemapper returns an empty Remapper.
func NewRemapper() *Remapper {
	return &Remapper{
		lists: make(map[string]string),
		tasks: make(map[string]taskRemap),
	}
}

// RecordListCreated maps a list placeholder to its server id.
func (r *Remapper) RecordListCreated(oldID, newID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[oldID] = newID
}

// RecordTaskCreated maps a task placeholder to its server id and owning list.
func (r *Remapper) RecordTaskCreated(oldID, newID, todoListID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[oldID] = taskRemap{newID: newID, todoListID: todoListID}
}

// ResolveListID returns the server id for id, or id itself.
func (r *Remapper) ResolveListID(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.lists[id]; ok {
		return n
	}
	return id
}

// ResolveTaskID returns the server id for id, or id itself.
func (r *Remapper) ResolveTaskID(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.tasks[id]; ok {
		return n.newID
	}
	return id
}

// Len returns the number of recorded list and task remaps.
func (r *Remapper) Len() (lists, tasks int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lists), len(r.tasks)
}

// ApplyToLists returns a copy of lists with every list id, task id and
// task back-reference resolved.
func (r *Remapper) ApplyToLists(lists []service.TodoList) []service.TodoList {
	out := service.CloneLists(lists)
	for i := range out {
		out[i].ID = r.ResolveListID(out[i].ID)
		for j := range out[i].Tasks {
			t := &out[i].Tasks[j]
			t.ID = r.ResolveTaskID(t.ID)
			t.TodoListID = out[i].ID
		}
	}
	return out
}

// ApplyToPendingReorder returns copies of the recorded list order and task
// orders with placeholders replaced by server ids, keys included.
func (r *Remapper) ApplyToPendingReorder(listOrder []string, taskOrders map[string][]string) ([]string, map[string][]string) {
	var lo []string
	if listOrder != nil {
		lo = make([]string, len(listOrder))
		for i, id := range listOrder {
			lo[i] = r.ResolveListID(id)
		}
	}

	var to map[string][]string
	if taskOrders != nil {
		to = make(map[string][]string, len(taskOrders))
		for listID, order := range taskOrders {
			ids := make([]string, len(order))
			for i, id := range order {
				ids[i] = r.ResolveTaskID(id)
			}
			to[r.ResolveListID(listID)] = ids
		}
	}
	return lo, to
}
