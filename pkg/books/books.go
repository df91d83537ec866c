package books

import (
	"context"
	"fmt"
	"strings"
)

// NewBook holds the user-supplied fields of a book being created.
type NewBook struct {
	Title      string
	Author     string
	Style      Style
	CoverColor string
	CoverImage string
}

// BookUpdate changes the non-nil fields of a book. The id, creation date and
// chapters are never touched.
type BookUpdate struct {
	Title      *string
	Author     *string
	Style      *Style
	CoverColor *string
	CoverImage *string
}

func (r *Repository) CreateBook(ctx context.Context, nb NewBook) (Book, error) {
	if strings.TrimSpace(nb.Title) == "" {
		return Book{}, ErrEmptyTitle
	}
	if nb.Style == "" {
		nb.Style = StyleClassic
	}
	if !nb.Style.Valid() {
		return Book{}, fmt.Errorf("%w: %q", ErrInvalidStyle, nb.Style)
	}
	if nb.CoverColor == "" {
		nb.CoverColor = DefaultCoverColor(nb.Style)
	}

	book := Book{
		ID:          r.newID(),
		Title:       nb.Title,
		Author:      nb.Author,
		Style:       nb.Style,
		CoverColor:  nb.CoverColor,
		CoverImage:  nb.CoverImage,
		DateCreated: r.today(),
		Chapters:    []Chapter{},
	}

	err := r.update(ctx, func(c Collection) error {
		c[book.ID] = book
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

func (r *Repository) GetBook(ctx context.Context, id string) (Book, error) {
	c, err := r.GetAllBooks(ctx)
	if err != nil {
		return Book{}, err
	}
	book, ok := c[id]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return book, nil
}

// ListBooks returns all books ordered by creation date.
func (r *Repository) ListBooks(ctx context.Context) ([]Book, error) {
	c, err := r.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(c))
	for _, id := range c.SortedIDs() {
		out = append(out, c[id])
	}
	return out, nil
}

func (r *Repository) UpdateBook(ctx context.Context, id string, upd BookUpdate) (Book, error) {
	var updated Book
	err := r.update(ctx, func(c Collection) error {
		book, ok := c[id]
		if !ok {
			return ErrBookNotFound
		}
		if upd.Title != nil {
			if strings.TrimSpace(*upd.Title) == "" {
				return ErrEmptyTitle
			}
			book.Title = *upd.Title
		}
		if upd.Author != nil {
			book.Author = *upd.Author
		}
		if upd.Style != nil {
			if !upd.Style.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStyle, *upd.Style)
			}
			book.Style = *upd.Style
		}
		if upd.CoverColor != nil {
			book.CoverColor = *upd.CoverColor
		}
		if upd.CoverImage != nil {
			book.CoverImage = *upd.CoverImage
		}
		c[id] = book
		updated = book
		return nil
	})
	return updated, err
}

// DeleteBook removes a book with all of its chapters and pages.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	return r.update(ctx, func(c Collection) error {
		if _, ok := c[id]; !ok {
			return ErrBookNotFound
		}
		delete(c, id)
		return nil
	})
}
