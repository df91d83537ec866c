// Package export renders a single book to a document file and optionally
// shares it.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"github.com/unowned-ai/moalif/pkg/books"
	"github.com/unowned-ai/moalif/pkg/share"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatPDF      Format = "pdf"
	FormatEPUB     Format = "epub"
	FormatDOCX     Format = "docx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var mimeTypes = map[Format]string{
	FormatMarkdown: "text/markdown",
	FormatText:     "text/plain",
}

// Options mirror the toggles of the export screen.
type Options struct {
	IncludeImages          bool
	IncludeCover           bool
	IncludeTableOfContents bool
	IncludePageNumbers     bool
}

// DefaultOptions has every section enabled.
func DefaultOptions() Options {
	return Options{
		IncludeImages:          true,
		IncludeCover:           true,
		IncludeTableOfContents: true,
		IncludePageNumbers:     true,
	}
}

// ParseFormat accepts a format name case-insensitively. Known formats that
// cannot be rendered yet still parse; ExportBook rejects them.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatMarkdown, FormatText, FormatPDF, FormatEPUB, FormatDOCX:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Supported reports whether f can be rendered.
func (f Format) Supported() bool {
	_, ok := mimeTypes[f]
	return ok
}

// Result describes a finished export.
type Result struct {
	Path   string `json:"path"`
	Pages  int    `json:"pages"`
	Shared bool   `json:"shared"`
}

type Exporter struct {
	repo   *books.Repository
	fs     afero.Fs
	dir    string
	sharer share.Sharer
	logger *slog.Logger
}

// NewExporter writes exports into dir on fsys. sharer may be nil.
func NewExporter(repo *books.Repository, fsys afero.Fs, dir string, sharer share.Sharer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{repo: repo, fs: fsys, dir: dir, sharer: sharer, logger: logger}
}

// ExportBook renders the book to <dir>/<slug>.<format>, replacing an earlier
// export of the same book, and shares it when a sharer is available.
func (e *Exporter) ExportBook(ctx context.Context, bookID string, format Format, opts Options) (Result, error) {
	if !format.Supported() {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	book, err := e.repo.GetBook(ctx, bookID)
	if err != nil {
		return Result{}, err
	}

	var content string
	switch format {
	case FormatMarkdown:
		content = RenderMarkdown(book, opts)
	case FormatText:
		content = RenderText(book, opts)
	}

	if err := e.fs.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create export directory %s: %w", e.dir, err)
	}
	path := filepath.Join(e.dir, Slug(book)+"."+string(format))
	if err := afero.WriteFile(e.fs, path, []byte(content), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write export %s: %w", path, err)
	}

	res := Result{Path: path, Pages: book.PageCount()}
	e.logger.Info("book exported", "book_id", book.ID, "format", format, "path", path, "pages", res.Pages)

	if e.sharer == nil || !e.sharer.IsAvailable(ctx) {
		return res, nil
	}
	if err := e.sharer.Share(ctx, path, share.Options{MimeType: mimeTypes[format], Title: book.Title}); err != nil {
		return res, fmt.Errorf("failed to share export %s: %w", path, err)
	}
	res.Shared = true
	return res, nil
}

// Slug derives a file name from the book title, keeping letters and digits
// of any script. Books whose titles have none fall back to their id.
func Slug(book books.Book) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(book.Title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return book.ID
	}
	return b.String()
}
