package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/transactions"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Inspect stored checkout and collection transactions",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions by status, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		statusFlag, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		status := transactions.ParseStatus(statusFlag)
		if string(status) != statusFlag {
			return fmt.Errorf("unknown status %q (pending, success, failed)", statusFlag)
		}

		store, closeStore, err := openStoreForCLI(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := store.ListByStatus(cmd.Context(), status, limit)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(list)
		}
		for _, t := range list {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				t.TransactionID, t.ReferenceNumber, t.Amount, t.Status, t.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var transactionsShowCmd = &cobra.Command{
	Use:   "show <transaction-id|reference>",
	Short: "Show one transaction by transaction id or reference number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStoreForCLI(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		t, err := store.FindByTransactionID(cmd.Context(), args[0])
		if errors.Is(err, transactions.ErrNotFound) {
			t, err = store.FindByReference(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(t)
		}
		fields := []ui.Field{
			{Label: "Transaction ID", Value: t.TransactionID},
			{Label: "Reference", Value: t.ReferenceNumber},
			{Label: "Amount", Value: t.Amount},
			{Label: "Status", Value: t.Status},
			{Label: "MSISDN", Value: t.MSISDN},
			{Label: "Created", Value: t.CreatedAt.Format(time.RFC3339)},
		}
		if t.ProcessedAt != nil {
			fields = append(fields, ui.Field{Label: "Processed", Value: t.ProcessedAt.Format(time.RFC3339)})
		}
		ui.WriteFields(os.Stdout, fields...)
		return nil
	},
}

func init() {
	transactionsCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (default database.url)")
	transactionsListCmd.Flags().String("status", "pending", "Status to list: pending, success, failed")
	transactionsListCmd.Flags().Int("limit", 50, "Maximum rows")

	transactionsCmd.AddCommand(transactionsListCmd)
	transactionsCmd.AddCommand(transactionsShowCmd)
}

func openStoreForCLI(cmd *cobra.Command) (transactions.Store, func(), error) {
	flags := map[string]string{}
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		flags["database-url"] = v
	}
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database.url is required (set BEEM_DATABASE_URL or --database-url)")
	}
	pool, err := newPool(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return transactions.NewPGStore(pool), pool.Close, nil
}
