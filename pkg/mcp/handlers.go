package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/moalif/pkg/books"
)

func styleNames() []string {
	var names []string
	for _, s := range books.Styles() {
		names = append(names, string(s))
	}
	return names
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong_moalif' to check if the Moalif MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_moalif"), nil
}

// RegisterListBooksTool registers the list_books tool.
func RegisterListBooksTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("list_books",
		mcp.WithDescription("Lists every book, oldest first, with its chapters and pages."),
	)
	s.AddTool(tool, listBooksHandler(repo))
}

func listBooksHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := repo.ListBooks(ctx)
		if err != nil {
			return bookError("list books", err), nil
		}
		if len(list) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(list, "books")
	}
}

// RegisterGetBookTool registers the get_book tool.
func RegisterGetBookTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("get_book",
		mcp.WithDescription("Retrieves a book by its id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the book.")),
	)
	s.AddTool(tool, getBookHandler(repo))
}

func getBookHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		book, err := repo.GetBook(ctx, id)
		if err != nil {
			return bookError("get book", err), nil
		}
		return jsonResult(book, "book")
	}
}

// RegisterCreateBookTool registers the create_book tool.
func RegisterCreateBookTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("create_book",
		mcp.WithDescription("Creates a new, empty book."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the book.")),
		mcp.WithString("author", mcp.Description("Author shown on the cover.")),
		mcp.WithString("style", mcp.Enum(styleNames()...), mcp.Description("Visual style of the book. Defaults to classic.")),
		mcp.WithString("cover_color", mcp.Description("Cover colour as #rrggbb. Defaults to the style's colour.")),
		mcp.WithString("cover_image", mcp.Description("Optional cover image URI.")),
	)
	s.AddTool(tool, createBookHandler(repo))
}

func createBookHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, errResult := requiredString(request, "title")
		if errResult != nil {
			return errResult, nil
		}
		nb := books.NewBook{Title: title}
		nb.Author, _ = stringArg(request, "author")
		style, _ := stringArg(request, "style")
		nb.Style = books.Style(style)
		nb.CoverColor, _ = stringArg(request, "cover_color")
		nb.CoverImage, _ = stringArg(request, "cover_image")

		book, err := repo.CreateBook(ctx, nb)
		if err != nil {
			return bookError("create book", err), nil
		}
		return jsonResult(book, "book")
	}
}

// RegisterUpdateBookTool registers the update_book tool.
func RegisterUpdateBookTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("update_book",
		mcp.WithDescription("Updates the title, author, style or cover of a book. Omitted fields are left alone."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("author", mcp.Description("New author.")),
		mcp.WithString("style", mcp.Enum(styleNames()...), mcp.Description("New style.")),
		mcp.WithString("cover_color", mcp.Description("New cover colour.")),
		mcp.WithString("cover_image", mcp.Description("New cover image URI; empty removes it.")),
	)
	s.AddTool(tool, updateBookHandler(repo))
}

func updateBookHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		upd := books.BookUpdate{
			Title:      optionalString(request, "title"),
			Author:     optionalString(request, "author"),
			CoverColor: optionalString(request, "cover_color"),
			CoverImage: optionalString(request, "cover_image"),
		}
		if style := optionalString(request, "style"); style != nil {
			st := books.Style(*style)
			upd.Style = &st
		}
		if upd == (books.BookUpdate{}) {
			return mcp.NewToolResultError("No update parameters provided. Please specify at least one of 'title', 'author', 'style', 'cover_color' or 'cover_image'."), nil
		}

		book, err := repo.UpdateBook(ctx, id, upd)
		if err != nil {
			return bookError("update book", err), nil
		}
		return jsonResult(book, "book")
	}
}

// RegisterDeleteBookTool registers the delete_book tool.
func RegisterDeleteBookTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("delete_book",
		mcp.WithDescription("Permanently deletes a book with all its chapters and pages."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the book.")),
	)
	s.AddTool(tool, deleteBookHandler(repo))
}

func deleteBookHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		if err := repo.DeleteBook(ctx, id); err != nil {
			return bookError("delete book", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Book '%s' deleted.", id)), nil
	}
}

// RegisterBookStatsTool registers the book_stats tool.
func RegisterBookStatsTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("book_stats",
		mcp.WithDescription(fmt.Sprintf("Counts books, chapters and pages, and reports each book's progress towards %d pages.", books.PageGoal)),
	)
	s.AddTool(tool, bookStatsHandler(repo))
}

func bookStatsHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := repo.Stats(ctx)
		if err != nil {
			return bookError("compute statistics", err), nil
		}
		return jsonResult(st, "statistics")
	}
}

// RegisterAddChapterTool registers the add_chapter tool.
func RegisterAddChapterTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("add_chapter",
		mcp.WithDescription("Appends a new, empty chapter to a book."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the chapter.")),
	)
	s.AddTool(tool, addChapterHandler(repo))
}

func addChapterHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bookID, errResult := requiredString(request, "book_id")
		if errResult != nil {
			return errResult, nil
		}
		title, errResult := requiredString(request, "title")
		if errResult != nil {
			return errResult, nil
		}
		ch, err := repo.AddChapter(ctx, bookID, title)
		if err != nil {
			return bookError("add chapter", err), nil
		}
		return jsonResult(ch, "chapter")
	}
}

// RegisterRenameChapterTool registers the rename_chapter tool.
func RegisterRenameChapterTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("rename_chapter",
		mcp.WithDescription("Changes the title of a chapter."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title.")),
	)
	s.AddTool(tool, renameChapterHandler(repo))
}

func renameChapterHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id", "title")
		if errResult != nil {
			return errResult, nil
		}
		ch, err := repo.RenameChapter(ctx, args[0], args[1], args[2])
		if err != nil {
			return bookError("rename chapter", err), nil
		}
		return jsonResult(ch, "chapter")
	}
}

// RegisterDeleteChapterTool registers the delete_chapter tool.
func RegisterDeleteChapterTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("delete_chapter",
		mcp.WithDescription("Deletes a chapter and every page in it."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
	)
	s.AddTool(tool, deleteChapterHandler(repo))
}

func deleteChapterHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id")
		if errResult != nil {
			return errResult, nil
		}
		if err := repo.DeleteChapter(ctx, args[0], args[1]); err != nil {
			return bookError("delete chapter", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Chapter '%s' deleted.", args[1])), nil
	}
}

// RegisterMoveChapterTool registers the move_chapter tool.
func RegisterMoveChapterTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("move_chapter",
		mcp.WithDescription("Moves a chapter up (negative offset) or down (positive offset). The position is clamped to the book."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
		mcp.WithNumber("offset", mcp.Required(), mcp.Description("How many positions to move, e.g. -1 or 1.")),
	)
	s.AddTool(tool, moveChapterHandler(repo))
}

func moveChapterHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id")
		if errResult != nil {
			return errResult, nil
		}
		offset, ok := intArg(request, "offset")
		if !ok {
			return mcp.NewToolResultError("'offset' parameter is required and must be a number."), nil
		}
		index, err := repo.MoveChapter(ctx, args[0], args[1], offset)
		if err != nil {
			return bookError("move chapter", err), nil
		}
		return jsonResult(map[string]any{"chapter_id": args[1], "index": index}, "position")
	}
}

// RegisterAddPageTool registers the add_page tool.
func RegisterAddPageTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("add_page",
		mcp.WithDescription("Appends a journal page to a chapter."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the page.")),
		mcp.WithString("content", mcp.Description("Body text of the page.")),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD or RFC 3339. Defaults to today.")),
		mcp.WithString("image_url", mcp.Description("Optional image URI.")),
	)
	s.AddTool(tool, addPageHandler(repo))
}

func addPageHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id", "title")
		if errResult != nil {
			return errResult, nil
		}
		np := books.NewPage{Title: args[2]}
		np.Content, _ = stringArg(request, "content")
		np.Date, _ = stringArg(request, "date")
		np.ImageURL, _ = stringArg(request, "image_url")

		page, err := repo.AddPage(ctx, args[0], args[1], np)
		if err != nil {
			return bookError("add page", err), nil
		}
		return jsonResult(page, "page")
	}
}

// RegisterUpdatePageTool registers the update_page tool.
func RegisterUpdatePageTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("update_page",
		mcp.WithDescription("Updates a page. Omitted fields are left alone."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Id of the page.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("content", mcp.Description("New body text.")),
		mcp.WithString("date", mcp.Description("New date.")),
		mcp.WithString("image_url", mcp.Description("New image URI; empty removes it.")),
	)
	s.AddTool(tool, updatePageHandler(repo))
}

func updatePageHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id", "page_id")
		if errResult != nil {
			return errResult, nil
		}
		upd := books.PageUpdate{
			Title:    optionalString(request, "title"),
			Content:  optionalString(request, "content"),
			Date:     optionalString(request, "date"),
			ImageURL: optionalString(request, "image_url"),
		}
		if upd == (books.PageUpdate{}) {
			return mcp.NewToolResultError("No update parameters provided. Please specify at least one of 'title', 'content', 'date' or 'image_url'."), nil
		}

		page, err := repo.UpdatePage(ctx, args[0], args[1], args[2], upd)
		if err != nil {
			return bookError("update page", err), nil
		}
		return jsonResult(page, "page")
	}
}

// RegisterDeletePageTool registers the delete_page tool.
func RegisterDeletePageTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("delete_page",
		mcp.WithDescription("Deletes a page from a chapter."),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Id of the book.")),
		mcp.WithString("chapter_id", mcp.Required(), mcp.Description("Id of the chapter.")),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Id of the page.")),
	)
	s.AddTool(tool, deletePageHandler(repo))
}

func deletePageHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := requiredStrings(request, "book_id", "chapter_id", "page_id")
		if errResult != nil {
			return errResult, nil
		}
		if err := repo.DeletePage(ctx, args[0], args[1], args[2]); err != nil {
			return bookError("delete page", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Page '%s' deleted.", args[2])), nil
	}
}

// RegisterSearchPagesTool registers the search_pages tool.
func RegisterSearchPagesTool(s *server.MCPServer, repo *books.Repository) {
	tool := mcp.NewTool("search_pages",
		mcp.WithDescription("Finds pages whose title or content contains any of the query words. Pages matching more words come first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Space-separated words to look for.")),
	)
	s.AddTool(tool, searchPagesHandler(repo))
}

func searchPagesHandler(repo *books.Repository) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, errResult := requiredString(request, "query")
		if errResult != nil {
			return errResult, nil
		}
		results, err := repo.SearchPages(ctx, query)
		if err != nil {
			return bookError("search pages", err), nil
		}
		return jsonResult(results, "search results")
	}
}

// requiredStrings fetches several required string arguments in order.
func requiredStrings(request mcp.CallToolRequest, names ...string) ([]string, *mcp.CallToolResult) {
	out := make([]string, 0, len(names))
	var missing []string
	for _, name := range names {
		s, ok := stringArg(request, name)
		if !ok || s == "" {
			missing = append(missing, "'"+name+"'")
			continue
		}
		out = append(out, s)
	}
	if len(missing) > 0 {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Missing required parameters: %s.", strings.Join(missing, ", ")))
	}
	return out, nil
}
