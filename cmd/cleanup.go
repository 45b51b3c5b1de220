package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskwell/taskwell/internal/config"
)

var cleanupMaxAgeDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old completed tasks",
	Long: `Delete tasks in the Done column that are older than the cutoff and
reclaim storage. The default cutoff comes from data.cleanupMaxAgeDays
in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		maxAge := cleanupMaxAgeDays
		if !cmd.Flags().Changed("max-age-days") {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			maxAge = cfg.Data.CleanupMaxAgeDays
		}

		result, err := svc.CleanupOldTasks(maxAge)
		if err != nil {
			return err
		}
		if result.RemovedCount == 0 {
			fmt.Printf("No completed tasks older than %d days.\n", maxAge)
			return nil
		}
		fmt.Printf("Removed %d task(s), reclaimed %d bytes.\n", result.RemovedCount, result.BytesSaved)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMaxAgeDays, "max-age-days", 30, "age cutoff in days for completed tasks")
	rootCmd.AddCommand(cleanupCmd)
}
