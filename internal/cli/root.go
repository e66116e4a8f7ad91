package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/beem"
	"github.com/beemafrica/beem-go/internal/config"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion is called from main to inject build-time version info.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

var rootCmd = &cobra.Command{
	Use:   "beem",
	Short: "Beem Africa API client and webhook receiver",
	Long: `beem talks to the Beem Africa APIs (SMS, OTP, airtime, disbursement,
checkout, contacts, collection, USSD) and runs the callback receiver that
records payment transactions.

Credentials come from beem.toml, BEEM_API_KEY / BEEM_SECRET_KEY or a .env file:
  beem sms send --to 255712345678 --message "Hello"
  beem serve --database-url postgresql://localhost:5432/shop`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadDotEnv,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to beem.toml config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(smsCmd)
	rootCmd.AddCommand(otpCmd)
	rootCmd.AddCommand(airtimeCmd)
	rootCmd.AddCommand(disburseCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(ussdCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadDotEnv loads the env file without overriding variables already set.
// A missing file is not an error.
func loadDotEnv(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func loadConfig(cmd *cobra.Command, flags map[string]string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newClient loads configuration and builds the Beem client used by the API
// subcommands. Logs go to stderr at warn level so stdout stays parseable.
func newClient(cmd *cobra.Command) (*beem.Client, *config.Config, error) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, nil, err
	}
	logger := newLogger("warn", "text")
	client := beem.New(cfg,
		beem.WithLogger(logger),
		beem.WithUserAgent("beem-cli/"+buildVersion),
	)
	return client, cfg, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseSlogLevel(level)}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
