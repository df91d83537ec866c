package books

import (
	"fmt"
	"sort"
)

// Style selects a cosmetic presentation theme for a book.
type Style string

const (
	StyleClassic  Style = "classic"
	StyleVintage  Style = "vintage"
	StyleMilitary Style = "military"
	StyleModern   Style = "modern"
	StyleFeminine Style = "feminine"
	StyleArtistic Style = "artistic"
)

var styleColors = map[Style]string{
	StyleClassic:  "#8e44ad",
	StyleVintage:  "#d35400",
	StyleMilitary: "#27ae60",
	StyleModern:   "#3498db",
	StyleFeminine: "#e84393",
	StyleArtistic: "#f39c12",
}

// Styles lists every known style in display order.
func Styles() []Style {
	return []Style{StyleClassic, StyleVintage, StyleMilitary, StyleModern, StyleFeminine, StyleArtistic}
}

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	_, ok := styleColors[s]
	return ok
}

// DefaultCoverColor returns the cover colour used when a book of this style has no cover image.
func DefaultCoverColor(s Style) string {
	if c, ok := styleColors[s]; ok {
		return c
	}
	return styleColors[StyleModern]
}

// Page is a single dated journal entry.
type Page struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Date     string `json:"date,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Chapter is an ordered group of pages. Page order is display order.
type Chapter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Book is the top-level document a user authors.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Style       Style     `json:"style"`
	CoverColor  string    `json:"coverColor"`
	CoverImage  string    `json:"coverImage,omitempty"`
	DateCreated string    `json:"dateCreated"`
	Chapters    []Chapter `json:"chapters"`
}

// Collection maps book id to book. It is the unit of persistence.
type Collection map[string]Book

// PageCount returns the number of pages across all chapters.
func (b Book) PageCount() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Pages)
	}
	return n
}

func (b Book) chapterIndex(id string) int {
	for i, ch := range b.Chapters {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

// ChapterByID returns the chapter with the given id.
func (b Book) ChapterByID(id string) (Chapter, bool) {
	if i := b.chapterIndex(id); i >= 0 {
		return b.Chapters[i], true
	}
	return Chapter{}, false
}

func (c Chapter) pageIndex(id string) int {
	for i, p := range c.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the collection invariants: every key equals the id of its
// book, chapter ids are unique within a book and page ids are unique within a
// chapter.
func (c Collection) Validate() error {
	for key, book := range c {
		if key == "" {
			return fmt.Errorf("%w: empty book id", ErrInvalidCollection)
		}
		if book.ID != key {
			return fmt.Errorf("%w: book stored under %q has id %q", ErrInvalidCollection, key, book.ID)
		}
		chapters := make(map[string]struct{}, len(book.Chapters))
		for _, ch := range book.Chapters {
			if _, dup := chapters[ch.ID]; dup {
				return fmt.Errorf("%w: duplicate chapter id %q in book %q", ErrInvalidCollection, ch.ID, key)
			}
			chapters[ch.ID] = struct{}{}

			pages := make(map[string]struct{}, len(ch.Pages))
			for _, p := range ch.Pages {
				if _, dup := pages[p.ID]; dup {
					return fmt.Errorf("%w: duplicate page id %q in chapter %q of book %q", ErrInvalidCollection, p.ID, ch.ID, key)
				}
				pages[p.ID] = struct{}{}
			}
		}
	}
	return nil
}

// SortedIDs returns book ids ordered by creation date, then id.
func (c Collection) SortedIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := c[ids[i]], c[ids[j]]
		if a.DateCreated != b.DateCreated {
			return a.DateCreated < b.DateCreated
		}
		return ids[i] < ids[j]
	})
	return ids
}
