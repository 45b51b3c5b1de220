package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show storage usage, schema version and operation metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		info, err := svc.StorageInfo()
		if err != nil {
			return err
		}
		version, err := svc.DataVersion()
		if err != nil {
			return err
		}

		fmt.Printf("Schema version: %s\n", version)
		fmt.Printf("Tasks:          %d\n", info.TaskCount)
		fmt.Printf("Storage:        %d / %d bytes (%.1f%%)\n", info.UsedBytes, info.CapacityBytes, info.PercentUsed)

		metrics := svc.Metrics()
		names := metrics.Names()
		if len(names) == 0 {
			return nil
		}
		fmt.Println("\nOperations this session:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  OPERATION\tCOUNT\tAVG LATENCY")
		for _, name := range names {
			m := metrics[name]
			fmt.Fprintf(w, "  %s\t%d\t%s\n", name, m.Count, m.AvgLatency)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
