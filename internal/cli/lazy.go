package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"todosync/internal/config"
	"todosync/internal/service"
)

// lazyService builds the backend on the first remote call. Staging
// commands get one so that edit mode never needs credentials.
type lazyService struct {
	build func() (service.Service, error)

	once sync.Once
	svc  service.Service
	err  error
}

func newLazyService(ctx context.Context, cfg *config.Config, factory ServiceFactory) *lazyService {
	return &lazyService{build: func() (service.Service, error) {
		return factory(ctx, cfg)
	}}
}

func (l *lazyService) get() (service.Service, error) {
	l.once.Do(func() {
		glog.V(2).Infof("[cli]connecting backend on first call")
		l.svc, l.err = l.build()
		if l.err != nil && isAuthError(l.err) && !errors.Is(l.err, service.ErrUnauthenticated) {
			l.err = fmt.Errorf("%w: %w", service.ErrUnauthenticated, l.err)
		}
	})
	return l.svc, l.err
}

func (l *lazyService) FetchAllLists(ctx context.Context) ([]service.TodoList, error) {
	svc, err := l.get()
	if err != nil {
		return nil, err
	}
	return svc.FetchAllLists(ctx)
}

func (l *lazyService) FetchTasks(ctx context.Context, listID string) ([]service.Task, error) {
	svc, err := l.get()
	if err != nil {
		return nil, err
	}
	return svc.FetchTasks(ctx, listID)
}

func (l *lazyService) CreateList(ctx context.Context, title string) (service.TodoList, error) {
	svc, err := l.get()
	if err != nil {
		return service.TodoList{}, err
	}
	return svc.CreateList(ctx, title)
}

func (l *lazyService) CreateTask(ctx context.Context, listID, title string) (service.Task, error) {
	svc, err := l.get()
	if err != nil {
		return service.Task{}, err
	}
	return svc.CreateTask(ctx, listID, title)
}

func (l *lazyService) DeleteList(ctx context.Context, listID string) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.DeleteList(ctx, listID)
}

func (l *lazyService) DeleteTask(ctx context.Context, listID, taskID string) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.DeleteTask(ctx, listID, taskID)
}

func (l *lazyService) RenameList(ctx context.Context, listID, title string) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.RenameList(ctx, listID, title)
}

func (l *lazyService) UpdateTask(ctx context.Context, listID, taskID string, task service.Task) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.UpdateTask(ctx, listID, taskID, task)
}

func (l *lazyService) ReorderTasks(ctx context.Context, listID, taskID, previousID string) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.ReorderTasks(ctx, listID, taskID, previousID)
}
