package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the task collection for invariant violations",
	Long: `Scan the stored collection for duplicate ids, invalid fields and
broken column numbering, without changing anything. Exits non-zero when
problems are found; run "taskwell repair" to fix them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		report := svc.ValidateIntegrity()
		if report.Valid {
			fmt.Println("OK: no integrity problems found.")
			return nil
		}
		fmt.Printf("Found %d problem(s):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Printf("  - %s\n", e)
		}
		return fmt.Errorf("integrity check failed")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
