package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/models"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by column",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		var tasks []models.Task
		if listStatus != "" {
			status := models.TaskStatus(listStatus)
			if !status.IsValid() {
				return fmt.Errorf("unknown status %q (use backlog, in-progress or done)", listStatus)
			}
			tasks = svc.Partition(status)
		} else {
			tasks = svc.Snapshot()
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\t#\tTITLE\tCREATED")
		for _, t := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				shortID(t.ID), t.Status, t.Order, t.Title, t.CreatedAt.Local().Format("2006-01-02"))
		}
		return w.Flush()
	},
}

// shortID abbreviates a UUID for display; full IDs remain accepted as input.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by column (backlog, in-progress, done)")
	rootCmd.AddCommand(listCmd)
}
