package books

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NewPage holds the fields of a journal entry being added to a chapter.
// An empty Date defaults to today.
type NewPage struct {
	Title    string
	Content  string
	Date     string
	ImageURL string
}

// PageUpdate changes the non-nil fields of a page.
type PageUpdate struct {
	Title    *string
	Content  *string
	Date     *string
	ImageURL *string
}

func validDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return nil
	}
	return fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

// withChapter applies fn to one chapter of one book and saves the book.
func (r *Repository) withChapter(ctx context.Context, bookID, chapterID string, fn func(*Chapter) error) error {
	return r.withBook(ctx, bookID, func(b *Book) error {
		i := b.chapterIndex(chapterID)
		if i < 0 {
			return ErrChapterNotFound
		}
		return fn(&b.Chapters[i])
	})
}

// AddPage appends a page to the end of a chapter.
func (r *Repository) AddPage(ctx context.Context, bookID, chapterID string, np NewPage) (Page, error) {
	if strings.TrimSpace(np.Title) == "" {
		return Page{}, ErrEmptyTitle
	}
	if np.Date == "" {
		np.Date = r.today()
	} else if err := validDate(np.Date); err != nil {
		return Page{}, err
	}

	page := Page{
		ID:       r.newID(),
		Title:    np.Title,
		Content:  np.Content,
		Date:     np.Date,
		ImageURL: np.ImageURL,
	}
	err := r.withChapter(ctx, bookID, chapterID, func(ch *Chapter) error {
		ch.Pages = append(ch.Pages, page)
		return nil
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, bookID, chapterID, pageID string, upd PageUpdate) (Page, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return Page{}, ErrEmptyTitle
	}
	if upd.Date != nil && *upd.Date != "" {
		if err := validDate(*upd.Date); err != nil {
			return Page{}, err
		}
	}

	var updated Page
	err := r.withChapter(ctx, bookID, chapterID, func(ch *Chapter) error {
		i := ch.pageIndex(pageID)
		if i < 0 {
			return ErrPageNotFound
		}
		p := &ch.Pages[i]
		if upd.Title != nil {
			p.Title = *upd.Title
		}
		if upd.Content != nil {
			p.Content = *upd.Content
		}
		if upd.Date != nil {
			p.Date = *upd.Date
		}
		if upd.ImageURL != nil {
			p.ImageURL = *upd.ImageURL
		}
		updated = *p
		return nil
	})
	return updated, err
}

func (r *Repository) DeletePage(ctx context.Context, bookID, chapterID, pageID string) error {
	return r.withChapter(ctx, bookID, chapterID, func(ch *Chapter) error {
		i := ch.pageIndex(pageID)
		if i < 0 {
			return ErrPageNotFound
		}
		ch.Pages = append(ch.Pages[:i], ch.Pages[i+1:]...)
		return nil
	})
}
