package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rudl-extract",
		Short: "Extract fields from Russian driver license photos",
		Long: `rudl-extract reads the holder's name, birth date, license number, issuing
authority, driving-since date, categories and special marks from photos of
a Russian driver license.

Photos are aligned to a canonical card layout, the printed regions are
read with Tesseract, and the fields are validated and normalized. The
result always carries a status (ok, partial or failed) and warnings that
explain anything missing.

Configuration is read from --config, ./.rudl-extract.yaml or the XDG
config directory, then overridden by RUDL_* environment variables (a .env
file in the working directory is loaded first).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-format", "", "Log format: text or json (default from configuration)")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
