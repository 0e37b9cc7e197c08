package gitlab_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/config"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/gitlab"
)

// fakeGitLab serves two pages of pending items and one page of done items.
type fakeGitLab struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeGitLab) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path+"?"+r.URL.RawQuery)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer s3cret" {
		http.Error(w, `{"message":"401 Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/api/v4/todos") {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	if q.Get("per_page") != "100" {
		http.Error(w, "bad per_page", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch q.Get("state") + "/" + q.Get("page") {
	case "pending/1":
		w.Header().Set("X-Next-Page", "2")
		fmt.Fprint(w, `[{"id":1,"state":"pending"},{"id":2,"state":"pending"}]`)
	case "pending/2":
		w.Header().Set("X-Next-Page", "")
		fmt.Fprint(w, `[{"id":3,"state":"pending"}]`)
	case "done/1":
		fmt.Fprint(w, `[{"id":4,"state":"done"}]`)
	default:
		fmt.Fprint(w, `[]`)
	}
}

func (f *fakeGitLab) statesRequested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		u, _ := url.Parse(r)
		out = append(out, u.Query().Get("state"))
	}
	return out
}

func newTestClient(t *testing.T, token, subpath string) (*gitlab.Client, *fakeGitLab) {
	t.Helper()
	fake := &fakeGitLab{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	host, err := url.Parse(srv.URL + subpath)
	if err != nil {
		t.Fatal(err)
	}
	return gitlab.NewClient(context.Background(), host, config.NewSecret(token), nil), fake
}

func ids(todos []gitlab.Todo) []uint64 {
	out := make([]uint64, len(todos))
	for i, td := range todos {
		out[i] = td.ID
	}
	return out
}

func TestGetTodosFollowsPagination(t *testing.T) {
	client, fake := newTestClient(t, "s3cret", "")

	todos, err := client.GetPendingTodos(context.Background())
	if err != nil {
		t.Fatalf("GetPendingTodos: %v", err)
	}
	if got := fmt.Sprint(ids(todos)); got != "[1 2 3]" {
		t.Errorf("ids = %s, want [1 2 3]", got)
	}
	if len(fake.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(fake.requests))
	}
}

func TestGetAllTodos(t *testing.T) {
	client, _ := newTestClient(t, "s3cret", "")

	todos, err := client.GetAllTodos(context.Background())
	if err != nil {
		t.Fatalf("GetAllTodos: %v", err)
	}
	if got := fmt.Sprint(ids(todos)); got != "[1 2 3 4]" {
		t.Errorf("ids = %s, want [1 2 3 4]", got)
	}
	if !todos[3].IsDone() {
		t.Error("last item should be done")
	}
}

func TestFetchForPolicy(t *testing.T) {
	tests := []struct {
		policy config.DonePolicy
		want   string
	}{
		{config.PolicyIgnore, "[pending pending]"},
		{config.PolicyMark, "[pending pending done]"},
		{config.PolicyAdd, "[pending pending done]"},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			client, fake := newTestClient(t, "s3cret", "")
			if _, err := client.FetchForPolicy(context.Background(), tt.policy); err != nil {
				t.Fatalf("FetchForPolicy: %v", err)
			}
			if got := fmt.Sprint(fake.statesRequested()); got != tt.want {
				t.Errorf("states requested = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClientKeepsHostSubpath(t *testing.T) {
	client, fake := newTestClient(t, "s3cret", "/gitlab")

	if _, err := client.GetDoneTodos(context.Background()); err != nil {
		t.Fatalf("GetDoneTodos: %v", err)
	}
	if !strings.HasPrefix(fake.requests[0], "/gitlab/api/v4/todos?") {
		t.Errorf("request path = %s, want /gitlab/api/v4/todos", fake.requests[0])
	}
}

func TestGetTodosAPIError(t *testing.T) {
	client, _ := newTestClient(t, "wrong", "")

	_, err := client.GetPendingTodos(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected token")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want status code", err)
	}
	if strings.Contains(err.Error(), "wrong") {
		t.Errorf("error leaks token: %q", err)
	}
}
