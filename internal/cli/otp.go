package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/otp"
)

var otpCmd = &cobra.Command{
	Use:   "otp",
	Short: "Request and verify one-time PINs",
}

var otpRequestCmd = &cobra.Command{
	Use:     "request <msisdn>",
	Short:   "Send a PIN to a phone number",
	Example: "  beem otp request 255712345678 --app-id 1234",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, _ := cmd.Flags().GetString("app-id")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.OTP.Request(cmd.Context(), otp.Request{AppID: appID, MSISDN: args[0]})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(res)
		}
		fmt.Println(ui.Status(true, res.Message))
		ui.WriteFields(os.Stdout, ui.Field{Label: "PIN ID", Value: res.PinID})
		return nil
	},
}

var otpVerifyCmd = &cobra.Command{
	Use:     "verify <pin-id> <pin>",
	Short:   "Verify a PIN",
	Example: "  beem otp verify 5a2b7c1e-... 1234",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.OTP.Verify(cmd.Context(), otp.Verification{PinID: args[0], Pin: args[1]})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(map[string]any{"valid": res.Valid(), "code": res.Code, "message": res.Message})
		}
		fmt.Println(ui.Status(res.Valid(), res.Message))
		if !res.Valid() {
			return fmt.Errorf("pin rejected (code %d)", res.Code)
		}
		return nil
	},
}

func init() {
	otpRequestCmd.Flags().String("app-id", "", "OTP application id (default otp.app_id)")

	otpCmd.AddCommand(otpRequestCmd)
	otpCmd.AddCommand(otpVerifyCmd)
}
