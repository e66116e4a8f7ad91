package cli

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/disbursement"
)

var disburseCmd = &cobra.Command{
	Use:     "disburse <wallet-number> <amount>",
	Short:   "Send money to a mobile wallet",
	Example: "  beem disburse 255712345678 5000 --wallet-code MPESA --reference payout-7",
	Args:    cobra.ExactArgs(2),
	RunE:    runDisburse,
}

func init() {
	disburseCmd.Flags().String("wallet-code", "", "Mobile wallet operator code, e.g. MPESA, TIGOPESA, AIRTELMONEY")
	disburseCmd.Flags().String("account", "", "Source account (default disbursement.source_account)")
	disburseCmd.Flags().String("currency", "", "Currency (default disbursement.currency)")
	disburseCmd.Flags().String("reference", "", "Client reference (generated when empty)")
	disburseCmd.MarkFlagRequired("wallet-code")
}

func runDisburse(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	walletCode, _ := cmd.Flags().GetString("wallet-code")
	account, _ := cmd.Flags().GetString("account")
	currency, _ := cmd.Flags().GetString("currency")
	ref, _ := cmd.Flags().GetString("reference")

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	res, err := client.Disbursement.Transfer(cmd.Context(), disbursement.Request{
		Amount:            amount,
		WalletNumber:      args[0],
		WalletCode:        walletCode,
		AccountNo:         account,
		ClientReferenceID: ref,
		Currency:          currency,
	})
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(res)
	}
	fmt.Println(ui.Status(true, res.Message))
	ui.WriteFields(os.Stdout,
		ui.Field{Label: "Transaction ID", Value: res.TransactionID},
		ui.Field{Label: "Reference", Value: res.ClientReference},
	)
	return nil
}
