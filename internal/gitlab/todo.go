package gitlab

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

// Todo is an item of the GitLab To-Do list (GET /api/v4/todos).
type Todo struct {
	ID         uint64     `json:"id"`
	Body       string     `json:"body"`
	State      string     `json:"state"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
	ActionName string     `json:"action_name"`
	TargetType string     `json:"target_type"`
	TargetURL  string     `json:"target_url"`
	Author     *User      `json:"author"`
	Project    *Namespace `json:"project"`
	Group      *Namespace `json:"group"`
}

type User struct {
	Username string `json:"username"`
}

// Namespace is the part of a project or group object the sync needs.
type Namespace struct {
	PathWithNamespace string `json:"path_with_namespace"`
	FullPath          string `json:"full_path"`
}

func (n *Namespace) path() string {
	if n == nil {
		return ""
	}
	if n.PathWithNamespace != "" {
		return n.PathWithNamespace
	}
	return n.FullPath
}

// TransformOptions controls how a Todo becomes a record.
type TransformOptions struct {
	ContextTag   string
	NoEscapeMeta bool
	Username     string
}

func (t Todo) IsDone() bool {
	return t.State == StateDone
}

// Path returns the project path, or the group path for group-level items.
func (t Todo) Path() string {
	if p := t.Project.path(); p != "" {
		return p
	}
	return t.Group.path()
}

// Excluded reports whether the item's path matches one of the glob patterns.
func (t Todo) Excluded(patterns []string) bool {
	path := t.Path()
	if path == "" {
		return false
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// datePrefix extracts the date from a timestamp such as "2024-01-05T10:00:00.000Z".
func datePrefix(raw string) (model.Date, error) {
	d, _, ok := strings.Cut(raw, "T")
	if !ok {
		return model.Date{}, fmt.Errorf("couldn't parse date from %q", raw)
	}
	return model.ParseDate(d)
}

// ToRecord converts the item into a todo.txt record:
//
//	[<target_type>:<action_name>] <body> +<project> [author:<name>] id:<id> [@<context>]
//
// The completion date is the last update of a done item.
func (t Todo) ToRecord(opts TransformOptions) (model.Record, error) {
	created, err := datePrefix(t.CreatedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("todo %d: created_at: %w", t.ID, err)
	}
	var completed *model.Date
	if t.IsDone() {
		d, err := datePrefix(t.UpdatedAt)
		if err != nil {
			return model.Record{}, fmt.Errorf("todo %d: updated_at: %w", t.ID, err)
		}
		completed = &d
	}

	// Bodies may span several lines; a record must stay on one.
	body := strings.Join(strings.Fields(t.Body), " ")
	if !opts.NoEscapeMeta {
		body = todotxt.EscapeDescription(body)
	}
	desc := fmt.Sprintf("[%s:%s]", t.TargetType, t.ActionName)
	if body != "" {
		desc += " " + body
	}

	rec, err := model.New(t.IsDone(), 0, &created, completed, desc)
	if err != nil {
		return model.Record{}, fmt.Errorf("todo %d: %w", t.ID, err)
	}
	if p := t.Path(); p != "" {
		rec.Append(model.ProjectTag(p))
	}
	if opts.Username != "" && t.Author != nil && t.Author.Username != "" && t.Author.Username != opts.Username {
		rec.Append(model.DataTag("author", t.Author.Username))
	}
	rec.Append(model.DataTag("id", strconv.FormatUint(t.ID, 10)))
	if opts.ContextTag != "" {
		rec.Append(model.ContextTag(opts.ContextTag))
	}
	return rec, nil
}

// LoadTodosFile reads a JSON array of items as returned by the API.
func LoadTodosFile(path string) ([]Todo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading todos file %s: %w", path, err)
	}
	var todos []Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("decoding todos file %s: %w", path, err)
	}
	return todos, nil
}
