package cli

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/checkout"
	"github.com/beemafrica/beem-go/internal/cli/ui"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Build checkout redirects and whitelist domains",
}

var checkoutURLCmd = &cobra.Command{
	Use:     "url <amount> <reference>",
	Short:   "Print the checkout redirect URL for a payment",
	Long:    "Print the checkout redirect URL. --show-auth also prints the Authorization header the checkout page expects; it contains your credentials. No request is sent to Beem.",
	Example: "  beem checkout url 2500 ORDER-42 --mobile 255712345678",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		txID, _ := cmd.Flags().GetString("transaction-id")
		mobile, _ := cmd.Flags().GetString("mobile")
		showAuth, _ := cmd.Flags().GetBool("show-auth")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		r, err := client.Checkout.RedirectURL(checkout.Request{
			Amount:          amount,
			ReferenceNumber: args[1],
			TransactionID:   txID,
			Mobile:          mobile,
		})
		if err != nil {
			return err
		}
		auth := ""
		if showAuth {
			auth = r.Authorization
		}
		if jsonOutput(cmd) {
			return printJSON(struct {
				*checkout.Redirect
				Authorization string `json:"authorization,omitempty"`
			}{r, auth})
		}
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "Transaction ID", Value: r.TransactionID},
			ui.Field{Label: "URL", Value: r.URL},
			ui.Field{Label: "Authorization", Value: auth},
		)
		return nil
	},
}

var checkoutWhitelistCmd = &cobra.Command{
	Use:     "whitelist <website>",
	Short:   "Register a website that may start checkouts",
	Example: "  beem checkout whitelist https://shop.example",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.Checkout.WhitelistDomain(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(res)
		}
		fmt.Println(ui.Status(true, res.Message))
		return nil
	},
}

func init() {
	checkoutURLCmd.Flags().String("transaction-id", "", "Transaction id (generated when empty)")
	checkoutURLCmd.Flags().String("mobile", "", "Payer mobile number")
	checkoutURLCmd.Flags().Bool("show-auth", false, "Also print the Authorization header (contains your credentials)")

	checkoutCmd.AddCommand(checkoutURLCmd)
	checkoutCmd.AddCommand(checkoutWhitelistCmd)
}
