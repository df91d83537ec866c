package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/backup"
	"github.com/unowned-ai/moalif/pkg/share"
)

// userError keeps the underlying error for errors.Is while leading with the
// message a person should read.
func userError(err error) error {
	return fmt.Errorf("%s (%w)", backup.UserMessage(err), err)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore all books",
	Long: `A backup is a single JSON file, books_backup.json, in the documents directory.
Creating a backup replaces the previous one. Restoring replaces ALL books.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write books_backup.json and share it",
	Long: `Writes every book to books_backup.json in the documents directory, replacing
the previous backup, then shares the file: into --share-dir if configured, or to
stdout with --stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.backups
		toStdout, _ := cmd.Flags().GetBool("stdout")
		if toStdout {
			svc = a.backupsTo(&share.Writer{Fs: a.fs, W: cmd.OutOrStdout()})
		}

		path, err := svc.CreateBackup(cmd.Context())
		if errors.Is(err, backup.ErrBackupUnavailable) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Path: %s\n", backup.UserMessage(err), svc.Path())
			return nil
		}
		if err != nil {
			return userError(err)
		}
		if !toStdout {
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s and shared.\n", path)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [path]",
	Short: "Replace all books with the contents of a backup",
	Long: `Validates the backup file (default: the existing books_backup.json) and, only
if it is valid, replaces ALL books with its contents. Books created after the
backup are lost.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			path, err = a.backups.LocateExistingBackup(cmd.Context())
			if err != nil {
				return userError(err)
			}
		}

		if err := a.backups.RestoreFromBackup(cmd.Context(), path); err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Books restored from %s.\n", path)
		return nil
	},
}

var backupLocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the path of the existing backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.backups.LocateExistingBackup(cmd.Context())
		if err != nil {
			return userError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().Bool("stdout", false, "Share the backup by writing it to stdout")

	backupCmd.AddCommand(backupCreateCmd, backupRestoreCmd, backupLocateCmd)
	rootCmd.AddCommand(backupCmd)
}
