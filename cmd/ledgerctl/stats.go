package main

import (
	"github.com/spf13/cobra"

	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated figures",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "monthly",
		Short: "Income, expense and profit per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return cli.RenderMonthly(cmd.OutOrStdout(), s.formatter, s.svc.Monthly())
		},
	})

	var txType string
	byCategory := &cobra.Command{
		Use:   "categories",
		Short: "Totals per category with their share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := core.ParseTransactionType(txType)
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return cli.RenderCategories(cmd.OutOrStdout(), s.formatter, t, s.svc.Categories(t))
		},
	}
	byCategory.Flags().StringVarP(&txType, "type", "t", core.Expense.String(), "income or expense")
	cmd.AddCommand(byCategory)

	cmd.AddCommand(&cobra.Command{
		Use:   "totals",
		Short: "Overall income, expense and profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return cli.RenderTotals(cmd.OutOrStdout(), s.formatter, s.svc.Totals())
		},
	})
	return cmd
}
