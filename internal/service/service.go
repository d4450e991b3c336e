package service

import "context"

// Service defines the interface for remote list and task operations.
// Every call either succeeds (nil error) or fails with a *RemoteError.
// Commands and the reconciler never import a backend SDK directly.
type Service interface {
	// FetchAllLists returns every list with its tasks, in API order.
	FetchAllLists(ctx context.Context) ([]TodoList, error)

	// FetchTasks returns the tasks of one list, in API order.
	FetchTasks(ctx context.Context, listID string) ([]Task, error)

	// CreateList creates a list and returns it with its server id.
	CreateList(ctx context.Context, title string) (TodoList, error)

	// CreateTask creates a task in listID and returns it with its server id.
	CreateTask(ctx context.Context, listID, title string) (Task, error)

	// DeleteList deletes a list. Its tasks go with it.
	DeleteList(ctx context.Context, listID string) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error

	// RenameList changes a list title.
	RenameList(ctx context.Context, listID, title string) error

	// UpdateTask replaces the title and status of a task.
	UpdateTask(ctx context.Context, listID, taskID string, task Task) error

	// ReorderTasks places taskID immediately after previousID.
	// An empty previousID moves the task to the top of the list.
	ReorderTasks(ctx context.Context, listID, taskID, previousID string) error
}
