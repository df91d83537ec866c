package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	moalif "github.com/unowned-ai/moalif/pkg"
	"github.com/unowned-ai/moalif/pkg/backup"
	"github.com/unowned-ai/moalif/pkg/books"
	"github.com/unowned-ai/moalif/pkg/export"
)

// ToolNames lists every tool RegisterAllTools installs.
var ToolNames = []string{
	"ping",
	"list_books", "get_book", "create_book", "update_book", "delete_book", "book_stats",
	"add_chapter", "rename_chapter", "delete_chapter", "move_chapter",
	"add_page", "update_page", "delete_page", "search_pages",
	"create_backup", "restore_backup", "locate_backup",
	"export_book",
}

type MoalifMCPServer struct {
	mcpServer *server.MCPServer
	repo      *books.Repository
	backups   *backup.Service
	exporter  *export.Exporter
	logger    *slog.Logger
}

// NewMoalifMCPServer wraps already opened services in an MCP server. The
// caller owns the underlying database.
func NewMoalifMCPServer(repo *books.Repository, backups *backup.Service, exporter *export.Exporter, logger *slog.Logger) *MoalifMCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := server.NewMCPServer(
		"Moalif MCP Server",
		moalif.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)
	return &MoalifMCPServer{
		mcpServer: s,
		repo:      repo,
		backups:   backups,
		exporter:  exporter,
		logger:    logger,
	}
}

// RegisterAllTools installs the book, backup and export tools.
func (s *MoalifMCPServer) RegisterAllTools() {
	RegisterPingTool(s.mcpServer)

	RegisterListBooksTool(s.mcpServer, s.repo)
	RegisterGetBookTool(s.mcpServer, s.repo)
	RegisterCreateBookTool(s.mcpServer, s.repo)
	RegisterUpdateBookTool(s.mcpServer, s.repo)
	RegisterDeleteBookTool(s.mcpServer, s.repo)
	RegisterBookStatsTool(s.mcpServer, s.repo)

	RegisterAddChapterTool(s.mcpServer, s.repo)
	RegisterRenameChapterTool(s.mcpServer, s.repo)
	RegisterDeleteChapterTool(s.mcpServer, s.repo)
	RegisterMoveChapterTool(s.mcpServer, s.repo)

	RegisterAddPageTool(s.mcpServer, s.repo)
	RegisterUpdatePageTool(s.mcpServer, s.repo)
	RegisterDeletePageTool(s.mcpServer, s.repo)
	RegisterSearchPagesTool(s.mcpServer, s.repo)

	RegisterCreateBackupTool(s.mcpServer, s.backups)
	RegisterRestoreBackupTool(s.mcpServer, s.backups)
	RegisterLocateBackupTool(s.mcpServer, s.backups)

	RegisterExportBookTool(s.mcpServer, s.exporter)
}

// Start runs the stdio event loop. Register tools beforehand.
func (s *MoalifMCPServer) Start() error {
	s.logger.Info("MCP server listening on stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server.
func (s *MoalifMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
