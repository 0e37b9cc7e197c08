package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/storage"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show counts of synced and other records in the todo file",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

type statusCounts struct {
	Total   int
	Synced  int
	Foreign int
	Pending int
	Done    int
}

// countRecords splits records the same way a sync does: with an empty
// context tag every record counts as synced.
func countRecords(records []model.Record, contextTag string) statusCounts {
	var c statusCounts
	for _, r := range records {
		c.Total++
		if contextTag != "" && !todotxt.HasContext(r, contextTag) {
			c.Foreign++
			continue
		}
		c.Synced++
		if r.Done {
			c.Done++
		} else {
			c.Pending++
		}
	}
	return c
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := storage.Load(cfg.TodoFile)
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), cfg.TodoFile, cfg.ContextTag, countRecords(records, cfg.ContextTag))
	return nil
}

func printStatus(w io.Writer, path, contextTag string, c statusCounts) {
	fmt.Fprintf(w, "Todo file: %s\n", path)
	if c.Total == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	label := "all records"
	if contextTag != "" {
		label = "@" + contextTag
	}
	fmt.Fprintf(w, "  Records: %d\n", c.Total)
	fmt.Fprintf(w, "  Synced:  %d (%s)\n", c.Synced, label)
	fmt.Fprintf(w, "    Pending: %d\n", c.Pending)
	fmt.Fprintf(w, "    Done:    %d\n", c.Done)
	fmt.Fprintf(w, "  Other:   %d\n", c.Foreign)
}
