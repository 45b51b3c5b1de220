package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addDescription string

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task to the Backlog column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		task, err := svc.CreateTask(args[0], addDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Added %q to Backlog at position %d (id %s)\n", task.Title, task.Order, task.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "optional task description")
	rootCmd.AddCommand(addCmd)
}
