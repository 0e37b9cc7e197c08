package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/reconcile"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/storage"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

var (
	listProject string
	listContext string
	listPending bool
	listFormat  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records of the todo.txt file",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listProject, "project", "", "Only records tagged +<project>")
	listCmd.Flags().StringVar(&listContext, "context", "", "Only records tagged @<context>")
	listCmd.Flags().BoolVar(&listPending, "pending", false, "Hide completed records")
	listCmd.Flags().StringVar(&listFormat, "format", "txt", "Output format: txt, json, csv")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := storage.Load(cfg.TodoFile)
	if err != nil {
		return err
	}

	filter := recordFilter{Project: listProject, Context: listContext, Pending: listPending}
	return printRecords(cmd.OutOrStdout(), filter.apply(records), listFormat)
}

type recordFilter struct {
	Project string
	Context string
	Pending bool
}

func (f recordFilter) apply(records []model.Record) []model.Record {
	var out []model.Record
	for _, r := range records {
		if f.Pending && r.Done {
			continue
		}
		if f.Project != "" && !todotxt.HasProject(r, f.Project) {
			continue
		}
		if f.Context != "" && !todotxt.HasContext(r, f.Context) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// recordRow is the flattened form used by the json and csv formats.
type recordRow struct {
	ID          string   `json:"id,omitempty"`
	Done        bool     `json:"done"`
	Priority    string   `json:"priority,omitempty"`
	Created     string   `json:"created,omitempty"`
	Completed   string   `json:"completed,omitempty"`
	Description string   `json:"description"`
	Projects    []string `json:"projects,omitempty"`
	Contexts    []string `json:"contexts,omitempty"`
}

func toRow(r model.Record) recordRow {
	row := recordRow{Done: r.Done, Description: r.Description}
	row.ID, _ = todotxt.GetData(r, reconcile.IDKey)
	if r.Priority != 0 {
		row.Priority = string(r.Priority)
	}
	if r.Created != nil {
		row.Created = r.Created.String()
	}
	if r.Completed != nil {
		row.Completed = r.Completed.String()
	}
	for _, tag := range todotxt.FindMeta(r.Description) {
		switch tag.Kind {
		case model.Project:
			row.Projects = append(row.Projects, tag.Name)
		case model.Context:
			row.Contexts = append(row.Contexts, tag.Name)
		}
	}
	return row
}

func printRecords(w io.Writer, records []model.Record, format string) error {
	switch format {
	case "json":
		rows := make([]recordRow, 0, len(records))
		for _, r := range records {
			rows = append(rows, toRow(r))
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "csv":
		return printCSV(w, records)
	case "txt", "":
		if len(records) == 0 {
			fmt.Fprintln(w, "No records found.")
			return nil
		}
		return todotxt.WriteRecords(w, records)
	default:
		return fmt.Errorf("unknown format %q (want txt, json or csv)", format)
	}
}

func printCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "done", "priority", "created", "completed", "description", "projects", "contexts"}); err != nil {
		return err
	}
	for _, r := range records {
		row := toRow(r)
		if err := cw.Write([]string{
			row.ID,
			fmt.Sprint(row.Done),
			row.Priority,
			row.Created,
			row.Completed,
			row.Description,
			strings.Join(row.Projects, " "),
			strings.Join(row.Contexts, " "),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
