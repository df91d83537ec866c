package books

import "context"

// PageGoal is the page count a book is measured against in writing progress.
const PageGoal = 100

// BookProgress is the writing progress of one book.
type BookProgress struct {
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	CoverColor string `json:"coverColor"`
	Chapters   int    `json:"chapters"`
	Pages      int    `json:"pages"`
	// Percent is Pages against PageGoal, capped at 100.
	Percent int `json:"percent"`
}

// Stats summarises the whole collection.
type Stats struct {
	Books    int            `json:"books"`
	Chapters int            `json:"chapters"`
	Pages    int            `json:"pages"`
	Progress []BookProgress `json:"progress"`
}

// Stats counts books, chapters and pages and reports per-book progress,
// ordered like ListBooks.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	list, err := r.ListBooks(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Books: len(list), Progress: make([]BookProgress, 0, len(list))}
	for _, b := range list {
		pages := b.PageCount()
		st.Chapters += len(b.Chapters)
		st.Pages += pages
		st.Progress = append(st.Progress, BookProgress{
			BookID:     b.ID,
			Title:      b.Title,
			CoverColor: b.CoverColor,
			Chapters:   len(b.Chapters),
			Pages:      pages,
			Percent:    min(pages*100/PageGoal, 100),
		})
	}
	return st, nil
}
