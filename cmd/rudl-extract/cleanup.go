package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored uploads older than the retention period",
		Long: `Cleanup deletes stored upload photos whose modification time is older
than the retention period and removes them from the upload index.

Examples:
  # Use the configured retention (72 hours by default)
  rudl-extract cleanup

  # Keep one day
  rudl-extract cleanup --ttl-hours 24`,
		Args: cobra.NoArgs,
		RunE: runCleanupCmd,
	}
	cmd.Flags().Float64("ttl-hours", 0, "Retention in hours (default from configuration)")
	return cmd
}

func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	hours, err := cmd.Flags().GetFloat64("ttl-hours")
	if err != nil {
		return err
	}
	if hours < 0 {
		return fmt.Errorf("--ttl-hours must not be negative, got %v", hours)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	store, ix, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	if ix != nil {
		defer ix.Close()
	}

	ttl := cfg.UploadTTL
	if cmd.Flags().Changed("ttl-hours") {
		ttl = time.Duration(hours * float64(time.Hour))
	}

	ctx, cancel := signalContext()
	defer cancel()

	rep, err := store.Cleanup(ctx, ttl)
	if err != nil {
		return err
	}
	logger.Info("uploads cleaned", "dir", store.Dir(), "scanned", rep.Scanned, "deleted", rep.Deleted)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", store.Dir(), rep)
	return nil
}
