package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [book-id]",
	Short: "Export a book to Markdown or plain text",
	Long: `Renders a book into the export directory as <title>.md or <title>.txt and
shares the file if --share-dir is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}
		opts := export.DefaultOptions()
		opts.IncludeImages, _ = cmd.Flags().GetBool("images")
		opts.IncludeCover, _ = cmd.Flags().GetBool("cover")
		opts.IncludeTableOfContents, _ = cmd.Flags().GetBool("toc")
		opts.IncludePageNumbers, _ = cmd.Flags().GetBool("page-numbers")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.exporter.ExportBook(cmd.Context(), args[0], format, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pages to %s", res.Pages, res.Path)
		if res.Shared {
			fmt.Fprint(cmd.OutOrStdout(), " (shared)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(export.FormatMarkdown), "Output format (md, txt)")
	exportCmd.Flags().Bool("images", true, "Include page images")
	exportCmd.Flags().Bool("cover", true, "Include the cover image")
	exportCmd.Flags().Bool("toc", true, "Include a table of contents")
	exportCmd.Flags().Bool("page-numbers", true, "Number the pages")

	rootCmd.AddCommand(exportCmd)
}
