package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDailyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily task maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Uncheck daily tasks completed before today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := a.store.CheckDailyReset(cmd.Context())
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Unchecked daily tasks from earlier days.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Daily tasks are up to date for %s.\n", a.store.Today())
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Uncheck every completed daily task now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := a.store.ForceDailyReset(cmd.Context())
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Unchecked all daily tasks.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed daily tasks.")
			}
			return nil
		},
	})

	return cmd
}
