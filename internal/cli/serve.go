package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/beemafrica/beem-go/internal/beem"
	"github.com/beemafrica/beem-go/internal/checkout"
	"github.com/beemafrica/beem-go/internal/cli/ui"
	"github.com/beemafrica/beem-go/internal/config"
	"github.com/beemafrica/beem-go/internal/server"
	"github.com/beemafrica/beem-go/internal/transactions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Beem callback receiver",
	Long: `Run the HTTP server that receives Beem payment and collection callbacks.
With webhook.store_transactions enabled, callbacks are upserted into the
beem_transactions table. With credentials configured, POST /api/checkout
starts a checkout for the whitelisted domains.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	serveCmd.Flags().Int("port", 0, "Server port (default 8090)")
	serveCmd.Flags().String("host", "", "Server host (default 0.0.0.0)")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
}

func serveFlags(cmd *cobra.Command) map[string]string {
	flags := make(map[string]string)
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		flags["database-url"] = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		flags["port"] = fmt.Sprintf("%d", v)
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		flags["host"] = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		flags["log-level"] = v
	}
	return flags
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, serveFlags(cmd))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	sp := ui.NewStepSpinner(os.Stderr, !ui.ColorEnabled())

	pool, store, err := openStore(ctx, cfg, logger, sp)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var checkouts *checkout.Service
	if err := cfg.RequireCredentials(); err != nil {
		logger.Warn("checkout endpoint disabled", "reason", err)
	} else {
		client := beem.New(cfg, beem.WithLogger(logger), beem.WithStore(store))
		checkouts = client.Checkout
	}

	srv := server.New(cfg, logger, pool, store, checkouts)

	errCh := make(chan error, 1)
	ready := make(chan struct{})
	go func() { errCh <- srv.StartWithReady(ready) }()

	select {
	case err := <-errCh:
		return err
	case <-ready:
	}
	fmt.Fprintf(os.Stderr, "  %s listening on http://%s\n", ui.StyleSuccess.Render(ui.SymbolCheck), cfg.Address())
	if cfg.Webhook.Enabled {
		fmt.Fprintf(os.Stderr, "  %s callbacks at %s and %s\n", ui.SymbolArrow, cfg.Webhook.Path, cfg.Webhook.CollectionPath)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

// openStore connects to Postgres and migrates the transactions table when
// transactions are stored. Otherwise both return values are nil.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, sp *ui.StepSpinner) (*pgxpool.Pool, transactions.Store, error) {
	if !cfg.Webhook.StoreTransactions {
		logger.Info("webhook.store_transactions is off; callbacks are acknowledged but not stored")
		return nil, nil, nil
	}

	var pool *pgxpool.Pool
	err := sp.Run("Connecting to database...", func() error {
		var err error
		pool, err = newPool(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if err := sp.Run("Migrating beem_transactions...", func() error {
		return transactions.Migrate(ctx, pool)
	}); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}

	return pool, transactions.NewPGStore(pool), nil
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
