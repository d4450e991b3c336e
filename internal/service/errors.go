package service

import (
	"errors"
	"fmt"
)

// ErrRemoteRejected is the single failure kind of a remote call: the call
// completed but did not succeed. Transport errors and timeouts are reported
// the same way.
var ErrRemoteRejected = errors.New("remote rejected")

// ErrUnauthenticated is returned when a backend cannot be built because
// credentials are missing or unreadable.
var ErrUnauthenticated = errors.New("not authenticated")

// Op names a remote operation.
type Op string

const (
	OpFetchAllLists Op = "fetchAllLists"
	OpFetchTasks    Op = "fetchTasks"
	OpCreateList    Op = "createList"
	OpCreateTask    Op = "createTask"
	OpDeleteList    Op = "deleteList"
	OpDeleteTask    Op = "deleteTask"
	OpRenameList    Op = "renameList"
	OpUpdateTask    Op = "updateTask"
	OpReorderTasks  Op = "reorderTasks"
)

// RemoteError is returned by every Service implementation on failure.
type RemoteError struct {
	Op  Op
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrRemoteRejected)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is makes every RemoteError match ErrRemoteRejected.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejected
}

// Rejected wraps err as a RemoteError for op. A nil err stays nil.
func Rejected(op Op, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
