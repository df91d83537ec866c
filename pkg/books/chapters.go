package books

import (
	"context"
	"strings"
)

// withBook loads the collection, applies fn to the named book and saves it back.
func (r *Repository) withBook(ctx context.Context, bookID string, fn func(*Book) error) error {
	return r.update(ctx, func(c Collection) error {
		book, ok := c[bookID]
		if !ok {
			return ErrBookNotFound
		}
		if err := fn(&book); err != nil {
			return err
		}
		c[bookID] = book
		return nil
	})
}

// AddChapter appends an empty chapter to the end of the book.
func (r *Repository) AddChapter(ctx context.Context, bookID, title string) (Chapter, error) {
	if strings.TrimSpace(title) == "" {
		return Chapter{}, ErrEmptyTitle
	}
	ch := Chapter{ID: r.newID(), Title: title, Pages: []Page{}}
	err := r.withBook(ctx, bookID, func(b *Book) error {
		b.Chapters = append(b.Chapters, ch)
		return nil
	})
	if err != nil {
		return Chapter{}, err
	}
	return ch, nil
}

func (r *Repository) RenameChapter(ctx context.Context, bookID, chapterID, title string) (Chapter, error) {
	if strings.TrimSpace(title) == "" {
		return Chapter{}, ErrEmptyTitle
	}
	var renamed Chapter
	err := r.withBook(ctx, bookID, func(b *Book) error {
		i := b.chapterIndex(chapterID)
		if i < 0 {
			return ErrChapterNotFound
		}
		b.Chapters[i].Title = title
		renamed = b.Chapters[i]
		return nil
	})
	return renamed, err
}

// DeleteChapter removes a chapter and every page in it.
func (r *Repository) DeleteChapter(ctx context.Context, bookID, chapterID string) error {
	return r.withBook(ctx, bookID, func(b *Book) error {
		i := b.chapterIndex(chapterID)
		if i < 0 {
			return ErrChapterNotFound
		}
		b.Chapters = append(b.Chapters[:i], b.Chapters[i+1:]...)
		return nil
	})
}

// MoveChapter shifts a chapter delta positions (negative moves it towards the
// start). The target position is clamped to the bounds of the chapter list.
// It returns the chapter's new index.
func (r *Repository) MoveChapter(ctx context.Context, bookID, chapterID string, delta int) (int, error) {
	var target int
	err := r.withBook(ctx, bookID, func(b *Book) error {
		i := b.chapterIndex(chapterID)
		if i < 0 {
			return ErrChapterNotFound
		}
		n := len(b.Chapters)
		target = min(max(i+min(max(delta, -n), n), 0), n-1)
		if target == i {
			return nil
		}
		ch := b.Chapters[i]
		rest := append(b.Chapters[:i:i], b.Chapters[i+1:]...)
		b.Chapters = append(rest[:target:target], append([]Chapter{ch}, rest[target:]...)...)
		return nil
	})
	return target, err
}
