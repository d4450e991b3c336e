package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"todosync/internal/config"
	"todosync/internal/service"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(context.Background(), srv.Client(), srv.URL+"/", timeout)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestCreateList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/users/@me/lists") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "list-1", "title": body["title"].(string)})
	}, time.Second)

	l, err := c.CreateList(context.Background(), "Groceries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID != "list-1" || l.Title != "Groceries" || l.Tasks == nil {
		t.Errorf("unexpected list %#v", l)
	}
}

func TestDeleteList_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	}, time.Second)

	err := c.DeleteList(context.Background(), "nope")
	if !errors.Is(err, service.ErrRemoteRejected) {
		t.Fatalf("expected remote rejection, got %v", err)
	}
	var re *service.RemoteError
	if !errors.As(err, &re) || re.Op != service.OpDeleteList {
		t.Errorf("expected deleteList RemoteError, got %#v", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected friendly message, got %q", err.Error())
	}
}

func TestReorderTasks_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, 20*time.Millisecond)

	err := c.ReorderTasks(context.Background(), "l", "t", "")
	if !errors.Is(err, service.ErrRemoteRejected) {
		t.Fatalf("expected remote rejection, got %v", err)
	}
}

func TestFetchTasks_MapsStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"t1","title":"a","status":"needsAction"},
			{"id":"t2","title":"b","status":"completed"}]}`))
	}, time.Second)

	got, err := c.FetchTasks(context.Background(), "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Done() || !got[1].Done() || got[1].TodoListID != "l1" {
		t.Errorf("unexpected tasks %#v", got)
	}
}

func TestFetchTasks_SortsByPosition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"t3","title":"c","position":"00000000000000000002"},
			{"id":"t1","title":"a","position":"00000000000000000000"},
			{"id":"t2","title":"b","position":"00000000000000000001"}]}`))
	}, time.Second)

	got, err := c.FetchTasks(context.Background(), "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var order []string
	for _, task := range got {
		order = append(order, task.ID)
	}
	if strings.Join(order, ",") != "t1,t2,t3" {
		t.Errorf("expected position order, got %v", order)
	}
}

// taskServer is a minimal stateful tasks endpoint for one list. Inserts
// land after the "previous" task, or first without one.
type taskServer struct {
	mu    sync.Mutex
	items []map[string]string
	next  int
	stale []string // inserts whose previous was not the last task
}

func (s *taskServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		body, _ := json.Marshal(map[string]any{"items": s.items})
		s.mu.Unlock()
		// give a concurrent create time to read the same state
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write(body)
	case http.MethodPost:
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		prev := r.URL.Query().Get("previous")

		s.mu.Lock()
		defer s.mu.Unlock()
		last := ""
		if len(s.items) > 0 {
			last = s.items[len(s.items)-1]["id"]
		}
		if prev != last {
			s.stale = append(s.stale, fmt.Sprintf("%v after %q, last %q", in["title"], prev, last))
		}
		at := 0
		for i, it := range s.items {
			if it["id"] == prev {
				at = i + 1
			}
		}
		s.next++
		created := map[string]string{"id": fmt.Sprintf("n%d", s.next), "title": fmt.Sprint(in["title"])}
		s.items = append(s.items[:at], append([]map[string]string{created}, s.items[at:]...)...)
		for i := range s.items {
			s.items[i]["position"] = fmt.Sprintf("%020d", i)
		}
		_ = json.NewEncoder(w).Encode(created)
	}
}

func TestCreateTask_ConcurrentAppendsKeepOrder(t *testing.T) {
	srv := &taskServer{items: []map[string]string{{"id": "x", "title": "X", "position": fmt.Sprintf("%020d", 0)}}}
	c := newTestClient(t, srv.ServeHTTP, time.Second)

	var wg sync.WaitGroup
	for _, title := range []string{"A", "B"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.CreateTask(context.Background(), "l1", title); err != nil {
				t.Errorf("create %s: %v", title, err)
			}
		}()
	}
	wg.Wait()

	srv.mu.Lock()
	stale := srv.stale
	srv.mu.Unlock()
	if len(stale) != 0 {
		t.Errorf("creates raced on the last task: %v", stale)
	}
	got, err := c.FetchTasks(context.Background(), "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0].ID != "x" {
		t.Errorf("unexpected tasks %#v", got)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Get x: context deadline exceeded", "request timed out"},
		{"googleapi: Error 401: bad creds", "token expired or revoked (run: todosync login)"},
		{"googleapi: Error 404: gone", "not found"},
		{"boom", "boom"},
	}
	for _, tt := range tests {
		err := wrapError(service.OpCreateTask, errors.New(tt.in))
		if err.Error() != "createTask: "+tt.want {
			t.Errorf("wrapError(%q) = %q", tt.in, err.Error())
		}
	}
	if wrapError(service.OpCreateTask, nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestStatusMapping(t *testing.T) {
	if fromStatus(service.StatusCompleted) != statusCompleted || fromStatus(service.StatusInProgress) != statusNeedsAction {
		t.Error("unexpected outbound status mapping")
	}
	if toStatus(statusCompleted) != service.StatusCompleted || toStatus("needsAction") != service.StatusNew {
		t.Error("unexpected inbound status mapping")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "oauth_client.json") {
		t.Errorf("error should name the missing file: %v", err)
	}
}
