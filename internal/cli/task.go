package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskquest/internal/view"
)

func newTaskCommand(a *app) *cobra.Command {
	var categoryRef string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the tasks of a category",
	}
	cmd.PersistentFlags().StringVarP(&categoryRef, "category", "c", "", "category position or id (required)")
	_ = cmd.MarkPersistentFlagRequired("category")

	var daily bool
	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to a category",
		Long: `Add appends a task to the category given with --category. The task gets
the next color of the category's palette.

Example:
  taskquest task add -c 1 "Drink water" --daily
  taskquest task add -c 2 Finish report`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.category(categoryRef)
			if err != nil {
				return err
			}
			a.store.SelectCategory(cat.ID)
			task, err := a.store.AddTask(cmd.Context(), cat.ID, strings.Join(args, " "), daily)
			if err != nil {
				return err
			}
			if task == nil {
				return errors.New("task text cannot be empty")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d to %s: %s\n", len(cat.Tasks)+1, cat.Name, task.Text)
			return nil
		},
	}
	add.Flags().BoolVar(&daily, "daily", false, "uncheck the task automatically every new day")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <n|id>",
		Short: "Mark a task done, or undone if it already is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.category(categoryRef)
			if err != nil {
				return err
			}
			task := view.FindTask(cat, args[0])
			if task == nil {
				return fmt.Errorf("task %q not found in %s", args[0], cat.Name)
			}
			res, err := a.store.ToggleTask(cmd.Context(), cat.ID, task.ID)
			if err != nil {
				return err
			}
			if res == nil {
				return fmt.Errorf("task %q not found in %s", args[0], cat.Name)
			}
			out := cmd.OutOrStdout()
			if res.Completed {
				fmt.Fprintf(out, "[x] %s (+%d XP)\n", res.Task.Text, res.Progress.XPGained)
			} else {
				fmt.Fprintf(out, "[ ] %s\n", res.Task.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the tasks of a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.category(categoryRef)
			if err != nil {
				return err
			}
			doc, _ := a.store.Snapshot()
			board := view.Project(doc, cat.ID, a.store.Today())
			return printBoard(cmd.OutOrStdout(), board)
		},
	})

	return cmd
}
