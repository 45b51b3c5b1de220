package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskwell/taskwell/internal/ui"
	"github.com/taskwell/taskwell/models"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the board as three columns",
	Long:  `Print a one-shot snapshot of the board. Use "taskwell ui" for the interactive view.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		width := 120
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}

		cols := make([]ui.Column, 0, len(models.AllStatuses))
		for _, s := range models.AllStatuses {
			cols = append(cols, ui.Column{Status: s, Tasks: svc.Partition(s)})
		}
		fmt.Println(ui.RenderBoard(cols, width, -1, 0))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
