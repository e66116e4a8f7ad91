package cli

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/airtime"
	"github.com/beemafrica/beem-go/internal/cli/ui"
)

var airtimeCmd = &cobra.Command{
	Use:   "airtime",
	Short: "Transfer airtime and check the airtime balance",
}

var airtimeTransferCmd = &cobra.Command{
	Use:     "transfer <msisdn> <amount>",
	Short:   "Top up a phone number",
	Example: "  beem airtime transfer 255712345678 1000 --reference order-42",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		ref, _ := cmd.Flags().GetString("reference")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.Airtime.Transfer(cmd.Context(), airtime.TransferRequest{
			DestAddr:    args[0],
			Amount:      amount,
			ReferenceID: ref,
		})
		if err != nil {
			return err
		}
		return printTransfer(cmd, res)
	},
}

var airtimeStatusCmd = &cobra.Command{
	Use:   "status <transaction-id>",
	Short: "Show the status of an airtime transfer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.Airtime.Status(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printTransfer(cmd, res)
	},
}

var airtimeBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show airtime credit balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		bal, err := client.Airtime.Balance(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(bal)
		}
		ui.WriteFields(os.Stdout, ui.Field{Label: "Credit balance", Value: bal.CreditBalance})
		return nil
	},
}

func init() {
	airtimeTransferCmd.Flags().String("reference", "", "Your reference for the transfer (generated when empty)")

	airtimeCmd.AddCommand(airtimeTransferCmd)
	airtimeCmd.AddCommand(airtimeStatusCmd)
	airtimeCmd.AddCommand(airtimeBalanceCmd)
}

func printTransfer(cmd *cobra.Command, res *airtime.TransferResult) error {
	if jsonOutput(cmd) {
		return printJSON(res)
	}
	ui.WriteFields(os.Stdout,
		ui.Field{Label: "Transaction ID", Value: res.TransactionID},
		ui.Field{Label: "Reference", Value: res.ReferenceID},
		ui.Field{Label: "Destination", Value: res.DestAddr},
		ui.Field{Label: "Amount", Value: res.Amount},
		ui.Field{Label: "Status", Value: res.Status},
		ui.Field{Label: "Message", Value: res.Message},
	)
	return nil
}
