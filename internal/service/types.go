// Package service defines the backend-agnostic interface for list and task operations.
package service

// TaskStatus is the lifecycle state of a task as the remote API reports it.
type TaskStatus int

const (
	StatusNew        TaskStatus = 0
	StatusInProgress TaskStatus = 1
	StatusCompleted  TaskStatus = 2
	StatusDraft      TaskStatus = 3
)

// Task represents a single task item.
// TodoListID is a back-reference to the owning list.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	TodoListID string     `json:"todoListId"`
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusCompleted
}

// TodoList represents a list and the tasks it holds, in display order.
type TodoList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// CloneLists returns a deep copy of lists. Mutating the copy never
// affects the original.
func CloneLists(lists []TodoList) []TodoList {
	if lists == nil {
		return nil
	}
	out := make([]TodoList, len(lists))
	for i, l := range lists {
		out[i] = TodoList{ID: l.ID, Title: l.Title}
		if l.Tasks != nil {
			out[i].Tasks = make([]Task, len(l.Tasks))
			copy(out[i].Tasks, l.Tasks)
		}
	}
	return out
}

// FindList returns the index of the list with the given id, or -1.
func FindList(lists []TodoList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1.
func (l TodoList) FindTask(id string) int {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
