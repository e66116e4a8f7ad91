package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/beem"
	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/config"
	"github.com/beemafrica/beem-go/internal/sms"
)

var smsCmd = &cobra.Command{
	Use:   "sms",
	Short: "Send SMS and manage sender names and templates",
}

var smsSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an SMS to one or more recipients",
	Example: `  beem sms send --to 255712345678 --message "Your order has shipped"
  beem sms send --to 0712345678,0755123456 --sender SHOP --message "Sale today"`,
	RunE: runSMSSend,
}

var smsBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show SMS credit balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		bal, err := client.SMS.Balance(cmd.Context())
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

var smsSegmentsCmd = &cobra.Command{
	Use:   "segments <message>",
	Short: "Count the SMS parts a message will be billed as",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := sms.Segments(args[0])
		if jsonOutput(cmd) {
			return printJSON(map[string]int{"characters": len([]rune(args[0])), "segments": n})
		}
		fmt.Println(n)
		return nil
	},
}

var smsReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show delivery reports for a sent message",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")
		reqID, _ := cmd.Flags().GetString("request-id")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		reports, err := client.SMS.DeliveryReports(cmd.Context(), dest, reqID)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(reports)
		}
		for _, r := range reports {
			fmt.Printf("%s\t%s\t%s\n", r.DestAddr, r.Status, r.Timestamp)
		}
		return nil
	},
}

var smsSenderNamesCmd = &cobra.Command{
	Use:   "sender-names",
	Short: "List sender names",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _ := cmd.Flags().GetString("query")
		status, _ := cmd.Flags().GetString("status")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		names, err := client.SMS.SenderNames(cmd.Context(), q, status)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(names)
		}
		for _, n := range names {
			fmt.Printf("%s\t%s\t%s\n", n.ID, n.SenderID, n.Status)
		}
		return nil
	},
}

var smsSenderNameRequestCmd = &cobra.Command{
	Use:   "request <sender-id> <sample-content>",
	Short: "Request a new sender name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		name, err := client.SMS.RequestSenderName(cmd.Context(), sms.SenderNameRequest{
			SenderID:      args[0],
			SampleContent: args[1],
		})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(name)
		}
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "ID", Value: name.ID},
			ui.Field{Label: "Sender ID", Value: name.SenderID},
			ui.Field{Label: "Status", Value: name.Status},
		)
		return nil
	},
}

var smsTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List SMS templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		templates, err := client.SMS.Templates(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(templates)
		}
		for _, t := range templates {
			fmt.Printf("%s\t%s\t%s\n", t.ID, t.Title, t.Message)
		}
		return nil
	},
}

var smsTemplateCreateCmd = &cobra.Command{
	Use:   "create <title> <message>",
	Short: "Create an SMS template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		t, err := client.SMS.CreateTemplate(cmd.Context(), sms.TemplateRequest{Title: args[0], Message: args[1]})
		if err != nil {
			return err
		}
		return printTemplate(cmd, t)
	},
}

var smsTemplateUpdateCmd = &cobra.Command{
	Use:   "update <id> <title> <message>",
	Short: "Update an SMS template",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		t, err := client.SMS.UpdateTemplate(cmd.Context(), args[0], sms.TemplateRequest{Title: args[1], Message: args[2]})
		if err != nil {
			return err
		}
		return printTemplate(cmd, t)
	},
}

var smsTemplateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an SMS template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		ack, err := client.SMS.DeleteTemplate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(ack)
		}
		fmt.Println(ui.Status(true, ack.Message))
		return nil
	},
}

var smsInternationalCmd = &cobra.Command{
	Use:   "international",
	Short: "Send international SMS",
}

var smsInternationalSendCmd = &cobra.Command{
	Use:   "send <from> <to> <text>",
	Short: "Send one international SMS",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.InternationalSMS.Send(cmd.Context(), sms.InternationalSendRequest{From: args[0], To: args[1], Text: args[2]})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(res)
		}
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "Message ID", Value: res.MessageID},
			ui.Field{Label: "Status", Value: res.Status},
			ui.Field{Label: "Parts", Value: res.Parts},
		)
		return nil
	},
}

var smsInternationalBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show international SMS balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		bal, err := client.InternationalSMS.Balance(cmd.Context())
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
	smsSendCmd.Flags().StringSlice("to", nil, "Recipient MSISDNs (comma-separated or repeated)")
	smsSendCmd.Flags().String("message", "", "Message text")
	smsSendCmd.Flags().String("sender", "", "Sender ID (default sms.sender_id)")
	smsSendCmd.Flags().String("schedule", "", `Send time in GMT+0, "2006-01-02 15:04"`)
	smsSendCmd.Flags().Bool("dry-run", false, "Log the message instead of sending it; no credentials needed")
	smsSendCmd.MarkFlagRequired("to")
	smsSendCmd.MarkFlagRequired("message")

	smsReportsCmd.Flags().String("dest", "", "Destination MSISDN")
	smsReportsCmd.Flags().String("request-id", "", "Request id returned by send")

	smsSenderNamesCmd.Flags().String("query", "", "Filter by sender id or content")
	smsSenderNamesCmd.Flags().String("status", "", "Filter by status (active, inactive, pending, rejected)")
	smsSenderNamesCmd.AddCommand(smsSenderNameRequestCmd)

	smsTemplatesCmd.AddCommand(smsTemplateCreateCmd)
	smsTemplatesCmd.AddCommand(smsTemplateUpdateCmd)
	smsTemplatesCmd.AddCommand(smsTemplateDeleteCmd)

	smsInternationalCmd.AddCommand(smsInternationalSendCmd)
	smsInternationalCmd.AddCommand(smsInternationalBalanceCmd)

	smsCmd.AddCommand(smsSendCmd)
	smsCmd.AddCommand(smsBalanceCmd)
	smsCmd.AddCommand(smsSegmentsCmd)
	smsCmd.AddCommand(smsReportsCmd)
	smsCmd.AddCommand(smsSenderNamesCmd)
	smsCmd.AddCommand(smsTemplatesCmd)
	smsCmd.AddCommand(smsInternationalCmd)
}

func runSMSSend(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetStringSlice("to")
	message, _ := cmd.Flags().GetString("message")
	senderID, _ := cmd.Flags().GetString("sender")
	schedule, _ := cmd.Flags().GetString("schedule")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	senderID = strings.TrimSpace(senderID)

	var (
		sender sms.Sender
		intl   *sms.InternationalService
		cfg    *config.Config
		err    error
	)
	if dryRun {
		if cfg, err = loadConfig(cmd, nil); err != nil {
			return err
		}
		sender = sms.NewLogSender(newLogger("info", "text"), sms.Config{
			DefaultSenderID: cfg.SMS.SenderID,
			Region:          cfg.Beem.Region,
		})
	} else {
		var client *beem.Client
		if client, cfg, err = newClient(cmd); err != nil {
			return err
		}
		sender, intl = client.SMS, client.InternationalSMS
	}

	// Dry runs log every recipient through the bulk sender.
	local, abroad := to, []string(nil)
	if intl != nil {
		if local, abroad, err = sms.SplitRecipients(to, cfg.Beem.Region); err != nil {
			return err
		}
	}

	var res *sms.SendResult
	if len(local) > 0 || len(abroad) == 0 {
		res, err = sender.Send(cmd.Context(), sms.SendRequest{
			SourceAddr:   senderID,
			Message:      message,
			Recipients:   local,
			ScheduleTime: schedule,
		})
		if err != nil {
			return err
		}
	}
	var intlResults []*sms.InternationalSendResult
	for _, msisdn := range abroad {
		r, err := intl.Send(cmd.Context(), sms.InternationalSendRequest{From: senderID, To: msisdn, Text: message})
		if err != nil {
			return fmt.Errorf("international send to %s: %w", msisdn, err)
		}
		intlResults = append(intlResults, r)
	}

	if jsonOutput(cmd) {
		if len(intlResults) == 0 {
			return printJSON(res)
		}
		return printJSON(struct {
			Local         *sms.SendResult                  `json:"local,omitempty"`
			International []*sms.InternationalSendResult `json:"international"`
		}{res, intlResults})
	}
	if res != nil {
		fmt.Println(ui.Status(res.Successful, res.Message))
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "Request ID", Value: res.RequestID},
			ui.Field{Label: "Valid", Value: res.Valid},
			ui.Field{Label: "Invalid", Value: res.Invalid},
			ui.Field{Label: "Duplicates", Value: res.Duplicates},
		)
	}
	for i, r := range intlResults {
		fmt.Println(ui.Status(r.Status != "" && !strings.EqualFold(r.Status, "failed"), abroad[i]+" (international)"))
		ui.WriteFields(os.Stdout,
			ui.Field{Label: "Message ID", Value: r.MessageID},
			ui.Field{Label: "Parts", Value: r.Parts},
		)
	}
	return nil
}

func printTemplate(cmd *cobra.Command, t *sms.Template) error {
	if jsonOutput(cmd) {
		return printJSON(t)
	}
	ui.WriteFields(os.Stdout,
		ui.Field{Label: "ID", Value: t.ID},
		ui.Field{Label: "Title", Value: t.Title},
		ui.Field{Label: "Message", Value: t.Message},
	)
	return nil
}
