package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/contacts"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage address books and contacts",
}

var addressBooksCmd = &cobra.Command{
	Use:     "address-books",
	Aliases: []string{"ab"},
	Short:   "List address books",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _ := cmd.Flags().GetString("query")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		books, err := client.Contacts.AddressBooks(cmd.Context(), q)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(books)
		}
		for _, b := range books {
			fmt.Printf("%s\t%s\t%d contacts\n", b.ID, b.Name, b.ContactsCount)
		}
		return nil
	},
}

var addressBookCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an address book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		ack, err := client.Contacts.CreateAddressBook(cmd.Context(), contacts.AddressBookRequest{Name: args[0], Description: desc})
		return printAck(cmd, ack, err)
	},
}

var addressBookDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an address book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		ack, err := client.Contacts.DeleteAddressBook(cmd.Context(), args[0])
		return printAck(cmd, ack, err)
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list <address-book-id>",
	Short: "List contacts in an address book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _ := cmd.Flags().GetString("query")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		list, err := client.Contacts.Contacts(cmd.Context(), args[0], q)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(list)
		}
		for _, c := range list {
			fmt.Printf("%s\t%s\t%s %s\n", c.ID, c.MobNo, c.FirstName, c.LastName)
		}
		return nil
	},
}

var contactsAddCmd = &cobra.Command{
	Use:     "add <address-book-id> <mobile>",
	Short:   "Add a contact to an address book",
	Example: "  beem contacts add ab-1 255712345678 --first-name Asha --last-name Mushi",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		email, _ := cmd.Flags().GetString("email")
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		ack, err := client.Contacts.CreateContact(cmd.Context(), contacts.ContactRequest{
			AddressBookIDs: []string{args[0]},
			MobNo:          args[1],
			FirstName:      first,
			LastName:       last,
			Email:          email,
		})
		return printAck(cmd, ack, err)
	},
}

var contactsRemoveCmd = &cobra.Command{
	Use:   "remove <address-book-id> <contact-id>...",
	Short: "Remove contacts from an address book",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		ack, err := client.Contacts.DeleteContacts(cmd.Context(), args[:1], args[1:])
		return printAck(cmd, ack, err)
	},
}

func init() {
	addressBooksCmd.Flags().String("query", "", "Filter by name")
	addressBookCreateCmd.Flags().String("description", "", "Address book description")
	addressBooksCmd.AddCommand(addressBookCreateCmd)
	addressBooksCmd.AddCommand(addressBookDeleteCmd)

	contactsListCmd.Flags().String("query", "", "Filter by name or number")
	contactsAddCmd.Flags().String("first-name", "", "First name")
	contactsAddCmd.Flags().String("last-name", "", "Last name")
	contactsAddCmd.Flags().String("email", "", "Email address")

	contactsCmd.AddCommand(addressBooksCmd)
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsAddCmd)
	contactsCmd.AddCommand(contactsRemoveCmd)
}

func printAck(cmd *cobra.Command, ack *contacts.Ack, err error) error {
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(ack)
	}
	msg := ack.Message
	if ack.ID != "" {
		msg += " (" + ack.ID + ")"
	}
	fmt.Println(ui.Status(true, msg))
	return nil
}
