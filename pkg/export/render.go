package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/unowned-ai/moalif/pkg/books"
)

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// RenderMarkdown renders book as a Markdown document with YAML front matter.
func RenderMarkdown(book books.Book, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b, "title: %s\n", quote(book.Title))
	fmt.Fprintf(&b, "author: %s\n", quote(book.Author))
	fmt.Fprintf(&b, "style: %s\n", book.Style)
	fmt.Fprintf(&b, "created_at: %s\n", book.DateCreated)
	fmt.Fprintf(&b, "pages: %d\n", book.PageCount())
	fmt.Fprintf(&b, "---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", book.Title)
	if book.Author != "" {
		fmt.Fprintf(&b, "*%s*\n\n", book.Author)
	}
	if opts.IncludeCover && book.CoverImage != "" {
		fmt.Fprintf(&b, "![Cover](%s)\n\n", book.CoverImage)
	}

	if opts.IncludeTableOfContents && len(book.Chapters) > 0 {
		fmt.Fprintf(&b, "## Contents\n\n")
		for i, ch := range book.Chapters {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ch.Title)
		}
		b.WriteString("\n")
	}

	number := 0
	for _, ch := range book.Chapters {
		fmt.Fprintf(&b, "## %s\n\n", ch.Title)
		for _, p := range ch.Pages {
			number++
			fmt.Fprintf(&b, "### %s\n\n", p.Title)
			if p.Date != "" {
				fmt.Fprintf(&b, "_%s_\n\n", p.Date)
			}
			if p.Content != "" {
				fmt.Fprintf(&b, "%s\n\n", p.Content)
			}
			if opts.IncludeImages && p.ImageURL != "" {
				fmt.Fprintf(&b, "![%s](%s)\n\n", p.Title, p.ImageURL)
			}
			if opts.IncludePageNumbers {
				fmt.Fprintf(&b, "<p align=\"center\">%d</p>\n\n", number)
			}
		}
	}

	return b.String()
}

func underline(s string, r rune) string {
	return strings.Repeat(string(r), utf8.RuneCountInString(s))
}

// RenderText renders book as plain text.
func RenderText(book books.Book, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", book.Title, underline(book.Title, '='))
	if book.Author != "" {
		fmt.Fprintf(&b, "%s\n", book.Author)
	}
	b.WriteString("\n")
	if opts.IncludeCover && book.CoverImage != "" {
		fmt.Fprintf(&b, "[cover: %s]\n\n", book.CoverImage)
	}

	if opts.IncludeTableOfContents && len(book.Chapters) > 0 {
		b.WriteString("Contents\n")
		for i, ch := range book.Chapters {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, ch.Title)
		}
		b.WriteString("\n")
	}

	number := 0
	for _, ch := range book.Chapters {
		fmt.Fprintf(&b, "%s\n%s\n\n", ch.Title, underline(ch.Title, '-'))
		for _, p := range ch.Pages {
			number++
			if p.Date != "" {
				fmt.Fprintf(&b, "%s (%s)\n", p.Title, p.Date)
			} else {
				fmt.Fprintf(&b, "%s\n", p.Title)
			}
			if p.Content != "" {
				fmt.Fprintf(&b, "%s\n", p.Content)
			}
			if opts.IncludeImages && p.ImageURL != "" {
				fmt.Fprintf(&b, "[image: %s]\n", p.ImageURL)
			}
			if opts.IncludePageNumbers {
				fmt.Fprintf(&b, "- %d -\n", number)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
