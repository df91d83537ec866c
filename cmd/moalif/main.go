package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	moalif "github.com/unowned-ai/moalif/pkg"
	"github.com/unowned-ai/moalif/pkg/config"
	pkgdb "github.com/unowned-ai/moalif/pkg/db"
)

var rootCmd = &cobra.Command{
	Use:   "moalif",
	Short: "Write personal journal books, back them up and export them.",
	Long: `moalif keeps journal books (chapters of dated pages) in a local SQLite
database, writes JSON backups that can be restored later, and exports books to
Markdown or plain text.

Settings come from flags, MOALIF_* environment variables, or a config file in
the data directory.`,
	Version:       fmt.Sprintf("v%s", moalif.Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for moalif.

Examples:

  Bash (current shell):
    $ source <(moalif completion bash)

  Zsh:
    $ moalif completion zsh > "${fpath[1]}/_moalif"

  Fish:
    $ moalif completion fish > ~/.config/fish/completions/moalif.fish

  PowerShell:
    PS> moalif completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of moalif",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), moalif.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the moalif database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Create or upgrade the database schema",
	Long: `Connects to the SQLite database (--db) and creates the schema if the database is
new. A database written by a different schema version is reported, not changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := pkgdb.GetComponentSchemaVersion(cmd.Context(), a.db, pkgdb.StoreComponent)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at schema version %d.\n", a.dbPath, version)
		return nil
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	dbCmd.AddCommand(dbUpgradeCmd)
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
