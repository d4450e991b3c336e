// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todosync/internal/config"
	"todosync/internal/service"
)

const (
	// PageSize is the number of items per page.
	PageSize = 100

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration

	// creates in one list are serialized, see CreateTask
	mu        sync.Mutex
	listLocks map[string]*sync.Mutex
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json: %w", service.ErrUnauthenticated, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %w", service.ErrUnauthenticated, err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token.json: %w", service.ErrUnauthenticated, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %w", service.ErrUnauthenticated, err)
	}

	// Token source refreshes on demand
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{svc: svc, timeout: cfg.Timeout()}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string, timeout time.Duration) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

// FetchAllLists returns all task lists with their open and completed tasks.
func (c *Client) FetchAllLists(ctx context.Context) ([]service.TodoList, error) {
	var result []service.TodoList
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
			for _, l := range resp.Items {
				result = append(result, service.TodoList{ID: l.Id, Title: l.Title})
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapError(service.OpFetchAllLists, err)
	}

	for i := range result {
		ts, err := c.FetchTasks(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Tasks = ts
	}
	return result, nil
}

// FetchTasks returns the tasks of a list in position order.
func (c *Client) FetchTasks(ctx context.Context, listID string) ([]service.Task, error) {
	var items []*tasks.Task
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.svc.Tasks.List(listID).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				items = append(items, resp.Items...)
				return nil
			})
	})
	if err != nil {
		return nil, wrapError(service.OpFetchTasks, err)
	}

	// the API does not promise position order across pages
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	result := make([]service.Task, 0, len(items))
	for _, t := range items {
		result = append(result, toTask(listID, t))
	}
	return result, nil
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, title string) (service.TodoList, error) {
	var created *tasks.TaskList
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.TodoList{}, wrapError(service.OpCreateList, err)
	}
	return service.TodoList{ID: created.Id, Title: created.Title, Tasks: []service.Task{}}, nil
}

// CreateTask creates a new task at the end of the list.
//
// Appending reads the current last task and inserts after it. The lock
// keeps a concurrent create in the same list from reading the same last
// task, which would scramble the server order.
func (c *Client) CreateTask(ctx context.Context, listID, title string) (service.Task, error) {
	lock := c.listLock(listID)
	lock.Lock()
	defer lock.Unlock()

	var created *tasks.Task
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		// Insert without a parent/previous puts the task first; find the
		// current last task so the new one is appended like a local add.
		last, err := c.lastTaskID(ctx, listID)
		if err != nil {
			return err
		}
		call := c.svc.Tasks.Insert(listID, &tasks.Task{Title: title})
		if last != "" {
			call = call.Previous(last)
		}
		created, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.Task{}, wrapError(service.OpCreateTask, err)
	}
	return toTask(listID, created), nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.svc.Tasklists.Delete(listID).Context(ctx).Do()
	})
	return wrapError(service.OpDeleteList, err)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	})
	return wrapError(service.OpDeleteTask, err)
}

// RenameList changes a task list title.
func (c *Client) RenameList(ctx context.Context, listID, title string) error {
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		_, err := c.svc.Tasklists.Patch(listID, &tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	return wrapError(service.OpRenameList, err)
}

// UpdateTask patches title and status of a task.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, task service.Task) error {
	patch := &tasks.Task{Title: task.Title, Status: fromStatus(task.Status)}
	if patch.Status == statusNeedsAction {
		// clearing completion requires an explicit null
		patch.NullFields = []string{"Completed"}
	}
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		_, err := c.svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do()
		return err
	})
	return wrapError(service.OpUpdateTask, err)
}

// ReorderTasks moves taskID right after previousID, or to the top.
func (c *Client) ReorderTasks(ctx context.Context, listID, taskID, previousID string) error {
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		call := c.svc.Tasks.Move(listID, taskID)
		if previousID != "" {
			call = call.Previous(previousID)
		}
		_, err := call.Context(ctx).Do()
		return err
	})
	return wrapError(service.OpReorderTasks, err)
}

// lastTaskID returns the top-level task with the highest position.
func (c *Client) lastTaskID(ctx context.Context, listID string) (string, error) {
	last, pos := "", ""
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				if t.Parent == "" && (last == "" || t.Position >= pos) {
					last, pos = t.Id, t.Position
				}
			}
			return nil
		})
	return last, err
}

func (c *Client) listLock(listID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listLocks == nil {
		c.listLocks = make(map[string]*sync.Mutex)
	}
	l, ok := c.listLocks[listID]
	if !ok {
		l = &sync.Mutex{}
		c.listLocks[listID] = l
	}
	return l
}

// withTimeout bounds fn with the per-call API timeout.
func (c *Client) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

func toTask(listID string, t *tasks.Task) service.Task {
	return service.Task{
		ID:         t.Id,
		Title:      t.Title,
		Status:     toStatus(t.Status),
		TodoListID: listID,
	}
}

func toStatus(s string) service.TaskStatus {
	if s == statusCompleted {
		return service.StatusCompleted
	}
	return service.StatusNew
}

func fromStatus(s service.TaskStatus) string {
	if s == service.StatusCompleted {
		return statusCompleted
	}
	return statusNeedsAction
}

// wrapError wraps API errors with user-friendly messages and marks them
// as remote rejections.
func wrapError(op service.Op, err error) error {
	if err == nil {
		return nil
	}
	glog.V(2).Infof("[googletasks]%s error = %s\n", op, err)

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return service.Rejected(op, fmt.Errorf("request timed out"))
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return service.Rejected(op, fmt.Errorf("token expired or revoked (run: todosync login)"))
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return service.Rejected(op, fmt.Errorf("not found"))
	}

	return service.Rejected(op, err)
}
