package main

import (
	"github.com/spf13/cobra"

	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

func categoriesCmd(a *app) *cobra.Command {
	var txType string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the built-in category catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var t core.TransactionType
			if txType != "" {
				parsed, err := core.ParseTransactionType(txType)
				if err != nil {
					return err
				}
				t = parsed
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return cli.RenderCatalog(cmd.OutOrStdout(), s.svc.Catalog(t))
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", "", "only income or expense")
	return cmd
}
