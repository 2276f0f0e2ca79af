package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
)

func addCmd(a *app) *cobra.Command {
	var (
		category    string
		categoryID  string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount>",
		Short: "Record a transaction",
		Long: `Record an income or expense. The amount is a positive decimal with at
most two fractional digits. Give either a catalog id (see "ledgerctl
categories") or a free-text category name.`,
		Example: `  ledgerctl add income 128.50 --category-id inc_sales
  ledgerctl add expense 36 --category 水电 --description "June bill"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTransactionType(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseMoney(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			tx, err := s.svc.Record(cmd.Context(), core.TransactionDraft{
				Type:        t,
				Amount:      amount,
				Category:    category,
				CategoryID:  categoryID,
				Description: strings.TrimSpace(description),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s)",
				tx.Category, s.formatter.Signed(tx.Type, tx.Amount), tx.ID)))
			return err
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVar(&categoryID, "category-id", "", "catalog category id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional note")
	cmd.MarkFlagsOneRequired("category", "category-id")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
			return err
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var (
		limit  int
		txType string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter core.TransactionType
			if txType != "" {
				t, err := core.ParseTransactionType(txType)
				if err != nil {
					return err
				}
				filter = t
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			txs := s.svc.Recent(0)
			if filter != "" {
				kept := txs[:0]
				for _, tx := range txs {
					if tx.Type == filter {
						kept = append(kept, tx)
					}
				}
				txs = kept
			}
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}
			return cli.RenderTransactions(cmd.OutOrStdout(), s.formatter, txs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows, 0 for all")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "only income or expense")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction as JSON",
		Long:  "Write every transaction as a JSON array, to stdout or to --output (suggested name " + ledger.ExportFileName + ").",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if output == "" || output == "-" {
				return s.svc.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := s.svc.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			_, err = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Exported to "+output))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
