package gitlab

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/config"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/reconcile"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/storage"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	Skipped   int
	Foreign   int
	Total     int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	TodoFile  string
	Policy    config.DonePolicy
	Exclude   []string
	Transform TransformOptions
	DryRun    bool
	// Out receives the resulting file content on a dry run. Defaults to stdout.
	Out    io.Writer
	Logger *slog.Logger
}

// OptionsFromConfig builds sync options from a loaded configuration.
func OptionsFromConfig(cfg config.Config) SyncOptions {
	return SyncOptions{
		TodoFile: cfg.TodoFile,
		Policy:   cfg.DoneTodoPolicy,
		Exclude:  cfg.ExcludeProjects,
		Transform: TransformOptions{
			ContextTag:   cfg.ContextTag,
			NoEscapeMeta: cfg.NoEscapeMeta,
			Username:     cfg.Username,
		},
	}
}

// ToRecords converts the items into records keyed by id. Items matching an
// exclude pattern, and done items under PolicyIgnore, are left out and counted
// as skipped.
func ToRecords(todos []Todo, opts SyncOptions) (map[uint64]model.Record, int, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, 0, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	logger := opts.logger()

	skipped := 0
	out := make(map[uint64]model.Record, len(todos))
	for _, todo := range todos {
		if opts.Policy == config.PolicyIgnore && todo.IsDone() {
			logger.Debug("ignoring done todo", "id", todo.ID)
			skipped++
			continue
		}
		if todo.Excluded(opts.Exclude) {
			logger.Debug("excluded todo", "id", todo.ID, "path", todo.Path())
			skipped++
			continue
		}
		rec, err := todo.ToRecord(opts.Transform)
		if err != nil {
			return nil, 0, err
		}
		out[todo.ID] = rec
	}
	return out, skipped, nil
}

// SyncTodos reconciles the items with the todo file and writes the result.
//
// Only records carrying the context tag take part in reconciliation; every
// other record is written back unchanged ahead of the synced ones. With an
// empty context tag the whole file is subject to the sync.
func SyncTodos(todos []Todo, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	logger := opts.logger()

	incoming, skipped, err := ToRecords(todos, opts)
	if err != nil {
		return result, err
	}
	result.Skipped = skipped

	existing, err := storage.Load(opts.TodoFile)
	if err != nil {
		return result, err
	}

	ctxTag := opts.Transform.ContextTag
	var foreign, subject []model.Record
	for _, rec := range existing {
		if ctxTag == "" || todotxt.HasContext(rec, ctxTag) {
			subject = append(subject, rec)
		} else {
			foreign = append(foreign, rec)
		}
	}
	logger.Debug("loaded todo file", "path", opts.TodoFile, "records", len(existing), "foreign", len(foreign))

	merged, res := reconcile.Merge(subject, incoming, opts.Policy, logger)
	final := append(foreign, merged...)

	result.Added = res.New
	result.Updated = res.Updated
	result.Unchanged = res.Unchanged
	result.Removed = res.Removed
	result.Foreign = len(foreign)
	result.Total = len(final)

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return result, todotxt.WriteRecords(out, final)
	}
	if err := storage.Save(opts.TodoFile, final); err != nil {
		return result, err
	}
	logger.Info("todo file written", "path", opts.TodoFile, "records", len(final))
	return result, nil
}

func (o SyncOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
