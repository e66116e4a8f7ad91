package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/cli/ui"
)

var ussdCmd = &cobra.Command{
	Use:   "ussd",
	Short: "USSD account commands",
}

var ussdBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show USSD credit balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		bal, err := client.USSD.Balance(cmd.Context())
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

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Payment collection commands",
}

var collectionBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show collected funds balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		bal, err := client.Collection.Balance(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(bal)
		}
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "Balance", Value: bal.Balance},
			ui.Field{Label: "Currency", Value: bal.Currency},
		)
		return nil
	},
}

func init() {
	ussdCmd.AddCommand(ussdBalanceCmd)
	collectionCmd.AddCommand(collectionBalanceCmd)
}
