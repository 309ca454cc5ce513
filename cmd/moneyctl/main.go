// Command moneyctl is the operator CLI: schema migrations, bulk SMS imports
// and manual processing passes against the service database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"money-mate/internal/app"
	"money-mate/pkg/config"
	"money-mate/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "moneyctl",
	Short:         "Operate the Money Mate SMS ingestion pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(userCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and a console logger for the command.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.New(level, "console")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// openApp wires the services without a job queue: nothing runs in the
// background of a CLI invocation.
func openApp(cmd *cobra.Command) (*app.App, *zap.Logger, error) {
	cfg, log, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cmd.Context(), cfg, nil, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}
