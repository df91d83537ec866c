package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run automatic backups in the foreground",
	Long: `Creates a backup on a schedule until interrupted, whether or not --auto-backup
is set. --schedule accepts daily (03:00 every day), weekly (03:00 on Sundays) or
a five-field cron expression.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := scheduler.NewAutoBackupScheduler(a.scheduledBackups(), a.cfg.AutoBackup.Schedule, a.logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
			if status := s.RunNow(ctx); !status.OK() {
				return userError(status.Err)
			}
		}
		if err := s.Start(ctx); err != nil {
			return err
		}
		if next, ok := s.NextRun(); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Backing up on %q. Next backup at %s. Press Ctrl+C to stop.\n", s.Schedule(), next.Format("2006-01-02 15:04 MST"))
		}

		<-ctx.Done()
		s.Stop()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Bool("run-now", false, "Create a backup immediately before waiting for the schedule")

	rootCmd.AddCommand(scheduleCmd)
}
