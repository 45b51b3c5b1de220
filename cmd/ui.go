package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/board"
	"github.com/taskwell/taskwell/internal/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive board",
	Long: `Open the full-screen kanban board. The view refreshes automatically
when another taskwell process rewrites the data file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		model := ui.NewBoardModel(svc)

		// Bridge the service's observer callback into a channel the TUI can
		// select on. The file watcher reloads the service, the reload fires
		// the observers, and the TUI redraws.
		changes := make(chan struct{}, 1)
		cancel := svc.Subscribe(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer cancel()
		model.Changes = changes

		if path := dataFilePath(); path != "" {
			w, err := board.NewWatcher(path, svc, nil)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: live reload unavailable: %v\n", err)
			} else {
				defer func() { _ = w.Close() }()
			}
		}

		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
