package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/board"
	"github.com/taskwell/taskwell/models"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a task",
	Long: `Delete a task. With no id, an interactive picker is shown.
Deletion asks for confirmation unless --yes is given; the engine itself
deletes unconditionally, confirmation is purely a CLI policy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := getService()
		if err != nil {
			return err
		}
		defer closer()

		var task models.Task
		if len(args) == 1 {
			task, err = findTask(svc, args[0])
		} else {
			task, err = selectTaskInteractive(svc)
		}
		if err != nil {
			return err
		}

		if !deleteYes {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("Delete %q", task.Title),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		removed, err := svc.DeleteTask(task.ID)
		if err != nil {
			return err
		}
		if !removed {
			return &models.NotFoundError{ID: task.ID}
		}
		fmt.Printf("Deleted %q\n", task.Title)
		return nil
	},
}

// selectTaskInteractive presents a searchable picker over all tasks.
func selectTaskInteractive(svc *board.Service) (models.Task, error) {
	tasks := svc.Snapshot()
	if len(tasks) == 0 {
		return models.Task{}, fmt.Errorf("no tasks on the board")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Title | cyan }} ({{ .Status }} #{{ .Order }})`,
		Inactive: `  {{ .Title | faint }} ({{ .Status }} #{{ .Order }})`,
		Selected: `{{ "✔" | green }} {{ .Title | faint }}`,
	}
	prompt := promptui.Select{
		Label:     "Select task to delete",
		Items:     tasks,
		Templates: templates,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return models.Task{}, err
	}
	return tasks[i], nil
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
