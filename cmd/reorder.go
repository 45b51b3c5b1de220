package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/board"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <id> <position>",
	Short: "Move a task to a new position within its column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		task, err := findTask(svc, args[0])
		if err != nil {
			return err
		}
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position must be an integer: %w", err)
		}

		op, err := board.PlanReorder(svc.Partition(task.Status), task.ID, position)
		if err != nil {
			return err
		}
		if result := svc.HandleDragDrop(op); !result.OK {
			return fmt.Errorf("%s", result.Err)
		}

		moved, _ := svc.GetTask(task.ID)
		fmt.Printf("Moved %q to position %d in %s\n", moved.Title, moved.Order, moved.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reorderCmd)
}
