package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskquest/internal/view"
)

func newCategoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Long: `Add creates a category at level 1 with no tasks.

Example:
  taskquest category add Health
  taskquest category add "Side projects"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.store.AddCategory(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if cat == nil {
				return errors.New("category name cannot be empty")
			}
			doc, _ := a.store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %d. %s\n", len(doc.Categories), cat.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories with their level and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _ := a.store.Snapshot()
			board := view.Project(doc, "", a.store.Today())
			return printCategories(cmd.OutOrStdout(), board.Categories)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <n|id>",
		Short: "Delete a category and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.category(args[0])
			if err != nil {
				return err
			}
			deleted, err := a.store.DeleteCategory(cmd.Context(), cat.ID, a.confirmer(cmd))
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s.\n", cat.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <n|id>",
		Short: "Uncheck every task in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.category(args[0])
			if err != nil {
				return err
			}
			changed, err := a.store.ResetCategoryTasks(cmd.Context(), cat.ID)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reset.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unchecked all tasks in %s.\n", cat.Name)
			return nil
		},
	})

	return cmd
}
