package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/gitlab"
)

// todosFileEnv names a JSON file to read items from instead of the API.
const todosFileEnv = "GITLAB_TODOS_JSON"

var (
	syncDryRun   bool
	syncFromFile string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync GitLab to-do items into the todo.txt file",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print the resulting todo file instead of writing it")
	syncCmd.Flags().StringVar(&syncFromFile, "from-file", "", "Read to-do items from a JSON file instead of the API (also "+todosFileEnv+")")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fromFile := syncFromFile
	if fromFile == "" {
		fromFile = os.Getenv(todosFileEnv)
	}

	var todos []gitlab.Todo
	if fromFile != "" {
		if err := cfg.ValidateLocal(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		todos, err = gitlab.LoadTodosFile(fromFile)
		if err != nil {
			return err
		}
	} else {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		host, err := cfg.HostURL()
		if err != nil {
			return err
		}
		client := gitlab.NewClient(cmd.Context(), host, cfg.GitLab.Token, slog.Default())
		todos, err = client.FetchForPolicy(cmd.Context(), cfg.DoneTodoPolicy)
		if err != nil {
			return fmt.Errorf("fetching gitlab todos: %w", err)
		}
	}

	// A dry run prints the file on stdout, so progress goes to stderr.
	w := cmd.OutOrStdout()
	dryTag := ""
	if syncDryRun {
		w = cmd.ErrOrStderr()
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(w, "Syncing %d GitLab to-do items into %s%s...\n", len(todos), cfg.TodoFile, dryTag)

	opts := gitlab.OptionsFromConfig(cfg)
	opts.DryRun = syncDryRun
	opts.Out = cmd.OutOrStdout()
	opts.Logger = slog.Default()

	result, err := gitlab.SyncTodos(todos, opts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printSummary(w, result)
	return nil
}

func printSummary(w io.Writer, r gitlab.SyncResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d new\n", r.Added)
	fmt.Fprintf(w, "  %d updated\n", r.Updated)
	fmt.Fprintf(w, "  %d unchanged\n", r.Unchanged)
	fmt.Fprintf(w, "  %d removed\n", r.Removed)
	if r.Skipped > 0 {
		fmt.Fprintf(w, "  %d skipped\n", r.Skipped)
	}
	fmt.Fprintf(w, "  %d other records kept\n", r.Foreign)
	fmt.Fprintf(w, "  %d records in file\n", r.Total)
}
