package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair integrity problems in the task collection",
	Long: `Fix what "taskwell check" reports: drop tasks with missing ids or
unusable fields, deduplicate ids, truncate overlong text and renumber
every column. Salvageable tasks are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		before := svc.ValidateIntegrity()
		if before.Valid {
			fmt.Println("Nothing to repair.")
			return nil
		}

		changed := svc.RepairIntegrity()
		after := svc.ValidateIntegrity()
		if !after.Valid {
			fmt.Printf("Repair left %d problem(s):\n", len(after.Errors))
			for _, e := range after.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("repair incomplete")
		}
		if changed {
			fmt.Printf("Repaired %d problem(s).\n", len(before.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
}
