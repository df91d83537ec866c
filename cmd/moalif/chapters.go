package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Manage the chapters of a book",
}

var chapterAddCmd = &cobra.Command{
	Use:   "add [book-id]",
	Short: "Append a chapter to a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.repo.AddChapter(cmd.Context(), args[0], title)
		if err != nil {
			return fmt.Errorf("failed to add chapter: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), ch)
	},
}

var chapterRenameCmd = &cobra.Command{
	Use:   "rename [book-id] [chapter-id]",
	Short: "Rename a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.repo.RenameChapter(cmd.Context(), args[0], args[1], title)
		if err != nil {
			return fmt.Errorf("failed to rename chapter: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), ch)
	},
}

var chapterDeleteCmd = &cobra.Command{
	Use:   "delete [book-id] [chapter-id]",
	Short: "Delete a chapter and all its pages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repo.DeleteChapter(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to delete chapter: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chapter %s deleted.\n", args[1])
		return nil
	},
}

var chapterMoveCmd = &cobra.Command{
	Use:   "move [book-id] [chapter-id]",
	Short: "Move a chapter up or down",
	Long: `Moves a chapter by --by positions; negative moves it towards the start.
--up and --down are shorthands for --by -1 and --by 1.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, _ := cmd.Flags().GetInt("by")
		if up, _ := cmd.Flags().GetBool("up"); up {
			delta = -1
		}
		if down, _ := cmd.Flags().GetBool("down"); down {
			delta = 1
		}
		if delta == 0 {
			return fmt.Errorf("pass --up, --down or a non-zero --by")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		index, err := a.repo.MoveChapter(cmd.Context(), args[0], args[1], delta)
		if err != nil {
			return fmt.Errorf("failed to move chapter: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chapter %s is now at position %d.\n", args[1], index+1)
		return nil
	},
}

func init() {
	chapterAddCmd.Flags().StringP("title", "t", "", "Title of the chapter (required)")
	chapterAddCmd.MarkFlagRequired("title")

	chapterRenameCmd.Flags().StringP("title", "t", "", "New title (required)")
	chapterRenameCmd.MarkFlagRequired("title")

	chapterMoveCmd.Flags().Bool("up", false, "Move one position towards the start")
	chapterMoveCmd.Flags().Bool("down", false, "Move one position towards the end")
	chapterMoveCmd.Flags().Int("by", 0, "Positions to move (negative moves up)")
	chapterMoveCmd.MarkFlagsMutuallyExclusive("up", "down", "by")

	chaptersCmd.AddCommand(chapterAddCmd, chapterRenameCmd, chapterDeleteCmd, chapterMoveCmd)
	rootCmd.AddCommand(chaptersCmd)
}
