package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func giftsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gifts",
		Short: "List active gifts and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			gifts, err := a.Gifts.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(gifts) == 0 {
				fmt.Fprintln(out, "No active gifts")
				return nil
			}
			fmt.Fprintf(out, "%-5s %-30s %12s %12s %7s\n", "ID", "NAME", "RAISED", "TARGET", "%")
			fmt.Fprintln(out, strings.Repeat("-", 70))
			for _, g := range gifts {
				fmt.Fprintf(out, "%-5d %-30s %12s %12s %6.2f%%\n",
					g.Id, g.Name, g.RaisedAmount.StringFixed(2), g.TargetAmount.StringFixed(2), g.CompletionPercentage())
			}
			return nil
		},
	}

	var id int64
	deactivate := &cobra.Command{
		Use:   "deactivate",
		Short: "Hide a gift from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setActive(cmd, open, id, false)
		},
	}
	deactivate.Flags().Int64Var(&id, "id", 0, "Gift id")
	_ = deactivate.MarkFlagRequired("id")

	activate := &cobra.Command{
		Use:   "activate",
		Short: "Show a hidden gift again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setActive(cmd, open, id, true)
		},
	}
	activate.Flags().Int64Var(&id, "id", 0, "Gift id")
	_ = activate.MarkFlagRequired("id")

	cmd.AddCommand(deactivate, activate)
	return cmd
}

func setActive(cmd *cobra.Command, open opener, id int64, active bool) error {
	a, err := open()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Gifts.SetActive(cmd.Context(), id, active); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Gift %d active=%v\n", id, active)
	return nil
}
