package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/mcp"
	"github.com/unowned-ai/moalif/pkg/scheduler"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the moalif MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes books, chapters,
pages, backups and export as MCP tools via STDIO.

If --db is not given, a system-specific default location is used:
- Windows: %USERPROFILE%\AppData\Roaming\moalif\moalif.db
- macOS: ~/Library/Application Support/moalif/moalif.db
- Linux: ~/.local/share/moalif/moalif.db

Example:

  moalif mcp --db books.db --share-dir ~/Dropbox/moalif --auto-backup --schedule weekly`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.AutoBackup.Enabled {
			s, err := scheduler.NewAutoBackupScheduler(a.scheduledBackups(), a.cfg.AutoBackup.Schedule, a.logger)
			if err != nil {
				return err
			}
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			defer s.Stop()
		}

		srv := mcp.NewMoalifMCPServer(a.repo, a.backups, a.exporter, a.logger)
		srv.RegisterAllTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Moalif MCP server started. DB: %s\n", a.dbPath)
		fmt.Fprintf(os.Stderr, "Available tools: %s\n", strings.Join(mcp.ToolNames, ", "))
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
