package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/books"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Manage the pages of a chapter",
}

var pageAddCmd = &cobra.Command{
	Use:   "add [book-id] [chapter-id]",
	Short: "Append a page to a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var np books.NewPage
		np.Title, _ = cmd.Flags().GetString("title")
		np.Content, _ = cmd.Flags().GetString("content")
		np.Date, _ = cmd.Flags().GetString("date")
		np.ImageURL, _ = cmd.Flags().GetString("image-url")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.repo.AddPage(cmd.Context(), args[0], args[1], np)
		if err != nil {
			return fmt.Errorf("failed to add page: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

var pageUpdateCmd = &cobra.Command{
	Use:   "update [book-id] [chapter-id] [page-id]",
	Short: "Update a page",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd books.PageUpdate
		for flag, field := range map[string]**string{
			"title":     &upd.Title,
			"content":   &upd.Content,
			"date":      &upd.Date,
			"image-url": &upd.ImageURL,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*field = &v
			}
		}
		if upd == (books.PageUpdate{}) {
			return fmt.Errorf("nothing to update: pass at least one of --title, --content, --date, --image-url")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.repo.UpdatePage(cmd.Context(), args[0], args[1], args[2], upd)
		if err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete [book-id] [chapter-id] [page-id]",
	Short: "Delete a page",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repo.DeletePage(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("failed to delete page: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page %s deleted.\n", args[2])
		return nil
	},
}

var pageSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Find pages containing any of the given words",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.repo.SearchPages(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to search pages: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), results)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pages found.")
			return nil
		}
		for _, m := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s / %s / %s (%s) [%d]\n", m.BookTitle, m.ChapterTitle, m.Page.Title, m.Page.Date, m.MatchCount)
			fmt.Fprintf(cmd.OutOrStdout(), "  ids: %s %s %s\n", m.BookID, m.ChapterID, m.Page.ID)
		}
		return nil
	},
}

func init() {
	pageAddCmd.Flags().StringP("title", "t", "", "Title of the page (required)")
	pageAddCmd.MarkFlagRequired("title")
	pageAddCmd.Flags().StringP("content", "c", "", "Body text of the page")
	pageAddCmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD or RFC 3339 (defaults to today)")
	pageAddCmd.Flags().String("image-url", "", "Image URI")

	pageUpdateCmd.Flags().StringP("title", "t", "", "New title")
	pageUpdateCmd.Flags().StringP("content", "c", "", "New body text")
	pageUpdateCmd.Flags().StringP("date", "d", "", "New date")
	pageUpdateCmd.Flags().String("image-url", "", "New image URI (empty removes it)")

	pageSearchCmd.Flags().Bool("json", false, "Print the matches as JSON")

	pagesCmd.AddCommand(pageAddCmd, pageUpdateCmd, pageDeleteCmd, pageSearchCmd)
	rootCmd.AddCommand(pagesCmd)
}
