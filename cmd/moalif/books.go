package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/books"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage books",
	Long:  `Provides commands for listing, creating, updating and deleting books.`,
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.repo.ListBooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
			return nil
		}

		if full, _ := cmd.Flags().GetBool("full"); full {
			return printJSON(cmd.OutOrStdout(), list)
		}
		for _, b := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d chapters, %d pages\n", b.ID, b.DateCreated, b.Title, len(b.Chapters), b.PageCount())
		}
		return nil
	},
}

var bookGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a book with all its chapters and pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		book, err := a.repo.GetBook(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), book)
	},
}

var bookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb := books.NewBook{}
		nb.Title, _ = cmd.Flags().GetString("title")
		nb.Author, _ = cmd.Flags().GetString("author")
		style, _ := cmd.Flags().GetString("style")
		nb.Style = books.Style(style)
		nb.CoverColor, _ = cmd.Flags().GetString("cover-color")
		nb.CoverImage, _ = cmd.Flags().GetString("cover-image")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		book, err := a.repo.CreateBook(cmd.Context(), nb)
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Book created successfully:")
		return printJSON(cmd.OutOrStdout(), book)
	},
}

var bookUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a book's title, author, style or cover",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd books.BookUpdate
		if cmd.Flags().Changed("title") {
			t, _ := cmd.Flags().GetString("title")
			upd.Title = &t
		}
		if cmd.Flags().Changed("author") {
			au, _ := cmd.Flags().GetString("author")
			upd.Author = &au
		}
		if cmd.Flags().Changed("style") {
			s, _ := cmd.Flags().GetString("style")
			st := books.Style(s)
			upd.Style = &st
		}
		if cmd.Flags().Changed("cover-color") {
			c, _ := cmd.Flags().GetString("cover-color")
			upd.CoverColor = &c
		}
		if cmd.Flags().Changed("cover-image") {
			i, _ := cmd.Flags().GetString("cover-image")
			upd.CoverImage = &i
		}
		if upd == (books.BookUpdate{}) {
			return fmt.Errorf("nothing to update: pass at least one of --title, --author, --style, --cover-color, --cover-image")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		book, err := a.repo.UpdateBook(cmd.Context(), args[0], upd)
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Book updated successfully:")
		return printJSON(cmd.OutOrStdout(), book)
	},
}

var bookDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a book with all its chapters and pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repo.DeleteBook(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Book %s deleted.\n", args[0])
		return nil
	},
}

var bookStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals and writing progress per book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.repo.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute statistics: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), st)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d books, %d chapters, %d pages\n", st.Books, st.Chapters, st.Pages)
		for _, p := range st.Progress {
			fmt.Fprintf(out, "%s\t%d / %d pages (%d%%)\n", p.Title, p.Pages, books.PageGoal, p.Percent)
		}
		return nil
	},
}

func styleHelp() string {
	s := "Book style ("
	for i, st := range books.Styles() {
		if i > 0 {
			s += ", "
		}
		s += string(st)
	}
	return s + ")"
}

func init() {
	bookListCmd.Flags().Bool("full", false, "Print every book as JSON, including chapters and pages")

	bookCreateCmd.Flags().StringP("title", "t", "", "Title of the book (required)")
	bookCreateCmd.MarkFlagRequired("title")
	bookCreateCmd.Flags().StringP("author", "a", "", "Author of the book")
	bookCreateCmd.Flags().StringP("style", "s", string(books.StyleClassic), styleHelp())
	bookCreateCmd.Flags().String("cover-color", "", "Cover colour as #rrggbb (defaults to the style's colour)")
	bookCreateCmd.Flags().String("cover-image", "", "Cover image URI")

	bookUpdateCmd.Flags().StringP("title", "t", "", "New title")
	bookUpdateCmd.Flags().StringP("author", "a", "", "New author")
	bookUpdateCmd.Flags().StringP("style", "s", "", styleHelp())
	bookUpdateCmd.Flags().String("cover-color", "", "New cover colour")
	bookUpdateCmd.Flags().String("cover-image", "", "New cover image URI (empty removes it)")

	bookStatsCmd.Flags().Bool("json", false, "Print the statistics as JSON")

	booksCmd.AddCommand(bookListCmd, bookGetCmd, bookCreateCmd, bookUpdateCmd, bookDeleteCmd, bookStatsCmd)
	rootCmd.AddCommand(booksCmd)
}
