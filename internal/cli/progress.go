package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskquest/internal/view"
)

func newProgressCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show levels, badges and today's summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _ := a.store.Snapshot()
			return printSummary(cmd.OutOrStdout(), view.DailySummary(doc, a.store.Today()))
		},
	}
}

func newResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every category, task and all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := a.store.ResetAll(cmd.Context(), a.confirmer(cmd))
			if err != nil {
				return err
			}
			if done {
				fmt.Fprintln(cmd.OutOrStdout(), "Everything was reset.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed.")
			}
			return nil
		},
	}
}
