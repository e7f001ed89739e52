// Package cmd holds the offerbridge cobra commands.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"offerbridge/internal/config"
	"offerbridge/internal/logging"
)

var (
	cfg     config.Config
	verbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "offerbridge",
		Short: "Normalize and reconcile home sale offer feeds",
		Long: `offerbridge maps rows from the live CRM feed and the weekly batch report
into canonical offer records, splits each record into a searchable index
payload and a PII vault blob, and merges it into stored state.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupCommand,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newMigrateCmd(),
		newIngestCmd(),
		newImportCmd(),
		newShowCmd(),
		newLinkCmd(),
		newSearchCmd(),
		newReindexCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	cfg = config.Load()
	if verbose {
		logging.SetDefault(logging.Default().Level(zerolog.DebugLevel))
	}
	log := logging.Default()
	cmd.SetContext(logging.WithLogger(cmd.Context(), log))
	if cfg.PhoneHashSalt == "" {
		log.Warn().Msg("PHONE_HASH_SALT is empty; phone hashes are unsalted")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
