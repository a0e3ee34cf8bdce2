package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/rudl-extract/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin and stdout",
		Long: `Serve runs a Model Context Protocol server speaking JSON-RPC 2.0 over
stdin and stdout. Configure it as a stdio server in your MCP client.

Tools:
  license_extract   Extract fields from front and back photos
  license_overlay   Show where regions land on an aligned photo
  uploads_cleanup   Delete stored uploads older than the retention period
  uploads_list      List the stored uploads of one request
  ocr_info          Describe the text recognition engine and storage

Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(a.pipeline,
		server.WithLogger(a.logger),
		server.WithStore(a.store),
		server.WithEngine(a.engine),
		server.WithVersion(getVersion()),
		server.WithCleanupTTL(a.cfg.UploadTTL),
		server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
	)
	return srv.Run(ctx)
}
