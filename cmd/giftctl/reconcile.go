package main

import (
	"fmt"

	"github.com/blues/giftreg/internal/model"
	"github.com/spf13/cobra"
)

func reconcileCmd(open opener) *cobra.Command {
	var (
		id     int64
		status string
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply a status to a contribution, e.g. a manual refund",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Reconcile.Reconcile(cmd.Context(), id, model.ContributionStatus(status))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !result.Applied {
				fmt.Fprintf(out, "Contribution %d stays %s (requested %s)\n", id, result.Status, status)
				return nil
			}
			fmt.Fprintf(out, "Contribution %d: %s -> %s, gift %d raised %s\n",
				id, result.PreviousStatus, result.Status, result.GiftId, result.RaisedAmount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Contribution id")
	cmd.Flags().StringVar(&status, "status", "", "approved, cancelled or refunded")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func sweepCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Check stale pending card contributions against the payment provider once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Sweeper.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sweep finished: %s\n", report)
			return nil
		},
	}
}
