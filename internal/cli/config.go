package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print resolved configuration",
	Long: `Load and print the resolved configuration as TOML with secrets masked.
Shows the result of merging defaults, beem.toml, environment variables and flags.`,
	RunE: runConfig,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long: `Get a specific configuration value by dotted key path.
Examples: server.port, beem.urls.sms, webhook.path, otp.pin_length`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in beem.toml",
	Long: `Set a configuration value in the beem.toml config file.
Creates the file if it doesn't exist.
Examples:
  beem config set sms.sender_id SHOP
  beem config set webhook.store_transactions true
  beem config set checkout.whitelist_domains https://shop.example,https://www.shop.example`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default beem.toml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

func configFilePath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		return "beem.toml"
	}
	return p
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	redacted := cfg.Redacted()

	if jsonOutput(cmd) {
		return printJSON(redacted)
	}

	out, err := redacted.ToTOML()
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	fmt.Print(out)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	value, err := config.GetValue(cfg.Redacted(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(map[string]any{"key": args[0], "value": value})
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configFilePath(cmd)
	key, value := args[0], args[1]

	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err := config.SetValue(path, key, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}

	fmt.Printf("%s = %s\n", key, value)
	fmt.Printf("Written to %s\n", path)

	// Values may be set incrementally, so an invalid result only warns.
	if _, err := config.Load(path, nil); err != nil {
		parts := strings.SplitN(err.Error(), ": ", 2)
		fmt.Fprintf(os.Stderr, "Note: %s\n", parts[len(parts)-1])
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFilePath(cmd)
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.GenerateDefault(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
