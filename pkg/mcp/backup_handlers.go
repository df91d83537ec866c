package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/moalif/pkg/backup"
	"github.com/unowned-ai/moalif/pkg/books"
	"github.com/unowned-ai/moalif/pkg/export"
)

type backupResult struct {
	Path    string `json:"path"`
	Shared  bool   `json:"shared"`
	Message string `json:"message,omitempty"`
}

// RegisterCreateBackupTool registers the create_backup tool.
func RegisterCreateBackupTool(s *server.MCPServer, backups *backup.Service) {
	tool := mcp.NewTool("create_backup",
		mcp.WithDescription("Writes every book to books_backup.json, replacing the previous backup, and shares the file if sharing is configured."),
	)
	s.AddTool(tool, createBackupHandler(backups))
}

func createBackupHandler(backups *backup.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := backups.CreateBackup(ctx)
		switch {
		case err == nil:
			return jsonResult(backupResult{Path: path, Shared: true}, "backup result")
		case errors.Is(err, backup.ErrBackupUnavailable):
			// The file is on disk; only the hand-off was skipped.
			return jsonResult(backupResult{Path: backups.Path(), Message: backup.UserMessage(err)}, "backup result")
		}
		return mcp.NewToolResultError(backup.UserMessage(err)), nil
	}
}

// RegisterRestoreBackupTool registers the restore_backup tool.
func RegisterRestoreBackupTool(s *server.MCPServer, backups *backup.Service) {
	tool := mcp.NewTool("restore_backup",
		mcp.WithDescription("Replaces ALL books with the contents of a backup file. Books not in the backup are lost."),
		mcp.WithString("path", mcp.Description("Backup file to restore. Defaults to the existing books_backup.json.")),
	)
	s.AddTool(tool, restoreBackupHandler(backups))
}

func restoreBackupHandler(backups *backup.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, _ := stringArg(request, "path")
		if path == "" {
			located, err := backups.LocateExistingBackup(ctx)
			if err != nil {
				return mcp.NewToolResultError(backup.UserMessage(err)), nil
			}
			path = located
		}
		if err := backups.RestoreFromBackup(ctx, path); err != nil {
			return mcp.NewToolResultError(backup.UserMessage(err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Books restored from '%s'.", path)), nil
	}
}

// RegisterLocateBackupTool registers the locate_backup tool.
func RegisterLocateBackupTool(s *server.MCPServer, backups *backup.Service) {
	tool := mcp.NewTool("locate_backup",
		mcp.WithDescription("Returns the path of the existing backup file, if any."),
	)
	s.AddTool(tool, locateBackupHandler(backups))
}

func locateBackupHandler(backups *backup.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := backups.LocateExistingBackup(ctx)
		if err != nil {
			return mcp.NewToolResultError(backup.UserMessage(err)), nil
		}
		return mcp.NewToolResultText(path), nil
	}
}

// RegisterExportBookTool registers the export_book tool.
func RegisterExportBookTool(s *server.MCPServer, exporter *export.Exporter) {
	tool := mcp.NewTool("export_book",
		mcp.WithDescription("Renders a book to a Markdown or plain text file."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("format", mcp.Enum(string(export.FormatMarkdown), string(export.FormatText)), mcp.Description("Output format. Defaults to md.")),
		mcp.WithBoolean("include_images", mcp.Description("Include page images. Defaults to true.")),
		mcp.WithBoolean("include_cover", mcp.Description("Include the cover image. Defaults to true.")),
		mcp.WithBoolean("include_table_of_contents", mcp.Description("Include a table of contents. Defaults to true.")),
		mcp.WithBoolean("include_page_numbers", mcp.Description("Number the pages. Defaults to true.")),
	)
	s.AddTool(tool, exportBookHandler(exporter))
}

func exportBookHandler(exporter *export.Exporter) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, errResult := requiredString(request, "book_id")
		if errResult != nil {
			return errResult, nil
		}
		format := export.FormatMarkdown
		if f, ok := stringArg(request, "format"); ok && f != "" {
			parsed, err := export.ParseFormat(f)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			format = parsed
		}
		opts := export.Options{
			IncludeImages:          boolArg(request, "include_images", true),
			IncludeCover:           boolArg(request, "include_cover", true),
			IncludeTableOfContents: boolArg(request, "include_table_of_contents", true),
			IncludePageNumbers:     boolArg(request, "include_page_numbers", true),
		}

		res, err := exporter.ExportBook(ctx, bookID, format, opts)
		if err != nil {
			if errors.Is(err, export.ErrUnsupportedFormat) || errors.Is(err, books.ErrBookNotFound) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to export book: %v", err)), nil
		}
		return jsonResult(res, "export result")
	}
}
