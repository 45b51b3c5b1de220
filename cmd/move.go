package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/board"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <status> [position]",
	Short: "Move a task to another column",
	Long: `Move a task into another column, optionally at a specific position
(default: end of the column). Both columns are renumbered so positions
stay contiguous, exactly as a drag-and-drop would.`,
	Args: cobra.RangeArgs(2, 3),
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
		status, err := parseStatus(args[1])
		if err != nil {
			return err
		}
		position := len(svc.Partition(status))
		if len(args) == 3 {
			position, err = strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("position must be an integer: %w", err)
			}
		}

		if task.Status == status {
			op, err := board.PlanReorder(svc.Partition(status), task.ID, position)
			if err != nil {
				return err
			}
			if result := svc.HandleDragDrop(op); !result.OK {
				return fmt.Errorf("%s", result.Err)
			}
		} else {
			op, err := board.PlanMove(svc.Partition(task.Status), svc.Partition(status), task.ID, status, position)
			if err != nil {
				return err
			}
			if result := svc.HandleDragDrop(op); !result.OK {
				return fmt.Errorf("%s", result.Err)
			}
		}

		moved, _ := svc.GetTask(task.ID)
		fmt.Printf("Moved %q to %s position %d\n", moved.Title, moved.Status, moved.Order)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
