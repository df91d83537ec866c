package books

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateBook(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()

	book, err := repo.CreateBook(ctx, NewBook{Title: "War Days", Author: "Sami", Style: StyleMilitary})
	require.NoError(t, err)

	assert.Equal(t, "id-1", book.ID)
	assert.Equal(t, "2024-01-02", book.DateCreated)
	assert.Equal(t, DefaultCoverColor(StyleMilitary), book.CoverColor)
	assert.NotNil(t, book.Chapters)
	assert.Empty(t, book.Chapters)

	stored, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, stored)
}

func TestCreateBook_Validation(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateBook(ctx, NewBook{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = repo.CreateBook(ctx, NewBook{Title: "Book", Style: "gothic"})
	assert.ErrorIs(t, err, ErrInvalidStyle)

	book, err := repo.CreateBook(ctx, NewBook{Title: "Book", CoverColor: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, StyleClassic, book.Style, "style defaults to classic")
	assert.Equal(t, "#000000", book.CoverColor, "explicit cover colour wins")
}

func TestGetBook_NotFound(t *testing.T) {
	repo, _ := setupTestRepository(t)
	_, err := repo.GetBook(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestListBooks_OrderedByCreation(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveBooks(ctx, Collection{
		"b": {ID: "b", Title: "B", DateCreated: "2024-03-01"},
		"a": {ID: "a", Title: "A", DateCreated: "2024-05-01"},
		"c": {ID: "c", Title: "C", DateCreated: "2024-03-01"},
	}))

	list, err := repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestUpdateBook(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	updated, err := repo.UpdateBook(ctx, "1", BookUpdate{
		Title:      ptr("Renamed"),
		Style:      ptr(StyleVintage),
		CoverImage: ptr("cover.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, StyleVintage, updated.Style)
	assert.Equal(t, "cover.png", updated.CoverImage)
	assert.Equal(t, "Ahmad", updated.Author, "nil fields are left alone")
	assert.Equal(t, "2024-01-01", updated.DateCreated, "dateCreated never changes")
	assert.Equal(t, sampleBook().Chapters, updated.Chapters)

	_, err = repo.UpdateBook(ctx, "1", BookUpdate{Style: ptr(Style("gothic"))})
	assert.ErrorIs(t, err, ErrInvalidStyle)

	_, err = repo.UpdateBook(ctx, "1", BookUpdate{Title: ptr("")})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = repo.UpdateBook(ctx, "nope", BookUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	require.NoError(t, repo.DeleteBook(ctx, "1"))
	books, err := repo.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	assert.ErrorIs(t, repo.DeleteBook(ctx, "1"), ErrBookNotFound)
}

func TestChapterLifecycle(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	ch2, err := repo.AddChapter(ctx, "1", "Chapter 2")
	require.NoError(t, err)
	ch3, err := repo.AddChapter(ctx, "1", "Chapter 3")
	require.NoError(t, err)

	book, err := repo.GetBook(ctx, "1")
	require.NoError(t, err)
	require.Len(t, book.Chapters, 3)
	assert.Equal(t, ch2.ID, book.Chapters[1].ID)
	assert.NotNil(t, book.Chapters[1].Pages)

	renamed, err := repo.RenameChapter(ctx, "1", ch2.ID, "The Middle")
	require.NoError(t, err)
	assert.Equal(t, "The Middle", renamed.Title)

	_, err = repo.RenameChapter(ctx, "1", "missing", "x")
	assert.ErrorIs(t, err, ErrChapterNotFound)
	_, err = repo.AddChapter(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrBookNotFound)
	_, err = repo.AddChapter(ctx, "1", "")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	require.NoError(t, repo.DeleteChapter(ctx, "1", "ch1"))
	book, err = repo.GetBook(ctx, "1")
	require.NoError(t, err)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, []string{ch2.ID, ch3.ID}, []string{book.Chapters[0].ID, book.Chapters[1].ID})
	assert.Zero(t, book.PageCount(), "deleting a chapter deletes its pages")

	assert.ErrorIs(t, repo.DeleteChapter(ctx, "1", "ch1"), ErrChapterNotFound)
}

func TestMoveChapter(t *testing.T) {
	book := Book{ID: "1", Title: "B", DateCreated: "2024-01-01", Chapters: []Chapter{
		{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}, {ID: "d", Title: "D"},
	}}

	tests := []struct {
		name    string
		chapter string
		delta   int
		index   int
		order   []string
	}{
		{"down one", "a", 1, 1, []string{"b", "a", "c", "d"}},
		{"up one", "c", -1, 1, []string{"a", "c", "b", "d"}},
		{"up past start clamps", "b", -5, 0, []string{"b", "a", "c", "d"}},
		{"down past end clamps", "b", 10, 3, []string{"a", "c", "d", "b"}},
		{"first cannot move up", "a", -1, 0, []string{"a", "b", "c", "d"}},
		{"last cannot move down", "d", 1, 3, []string{"a", "b", "c", "d"}},
		{"huge offset moves to end", "b", math.MaxInt, 3, []string{"a", "c", "d", "b"}},
		{"huge negative offset moves to start", "c", math.MinInt, 0, []string{"c", "a", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setupTestRepository(t)
			ctx := context.Background()
			require.NoError(t, repo.SaveBooks(ctx, Collection{"1": book}))

			index, err := repo.MoveChapter(ctx, "1", tt.chapter, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.index, index)

			got, err := repo.GetBook(ctx, "1")
			require.NoError(t, err)
			var order []string
			for _, ch := range got.Chapters {
				order = append(order, ch.ID)
			}
			assert.Equal(t, tt.order, order)
		})
	}
}

func TestPageLifecycle(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	page, err := repo.AddPage(ctx, "1", "ch1", NewPage{Title: "Day Two", Content: "Up early"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", page.Date, "date defaults to today")

	_, err = repo.AddPage(ctx, "1", "ch1", NewPage{Title: "Bad", Date: "yesterday"})
	assert.Error(t, err)
	_, err = repo.AddPage(ctx, "1", "ch1", NewPage{Title: ""})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	_, err = repo.AddPage(ctx, "1", "nope", NewPage{Title: "x"})
	assert.ErrorIs(t, err, ErrChapterNotFound)

	updated, err := repo.UpdatePage(ctx, "1", "ch1", page.ID, PageUpdate{
		Content:  ptr("Up very early"),
		ImageURL: ptr("https://example.com/sunrise.png"),
		Date:     ptr("2024-01-03T06:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Day Two", updated.Title)
	assert.Equal(t, "Up very early", updated.Content)
	assert.Equal(t, "2024-01-03T06:00:00Z", updated.Date)

	_, err = repo.UpdatePage(ctx, "1", "ch1", "nope", PageUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrPageNotFound)

	book, err := repo.GetBook(ctx, "1")
	require.NoError(t, err)
	require.Len(t, book.Chapters[0].Pages, 2)
	assert.Equal(t, "p1", book.Chapters[0].Pages[0].ID, "pages keep insertion order")
	assert.Equal(t, updated, book.Chapters[0].Pages[1])
	assert.Equal(t, 2, book.PageCount())

	require.NoError(t, repo.DeletePage(ctx, "1", "ch1", "p1"))
	assert.ErrorIs(t, repo.DeletePage(ctx, "1", "ch1", "p1"), ErrPageNotFound)

	book, err = repo.GetBook(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []Page{updated}, book.Chapters[0].Pages)
}

func TestConcurrentMutationsAreNotLost(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddChapter(ctx, "1", fmt.Sprintf("Chapter %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	book, err := repo.GetBook(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, book.Chapters, writers+1)
}

func TestStyles(t *testing.T) {
	for _, s := range Styles() {
		assert.True(t, s.Valid(), "style %s", s)
		assert.NotEmpty(t, DefaultCoverColor(s))
	}
	assert.False(t, Style("").Valid())
	assert.Equal(t, DefaultCoverColor(StyleModern), DefaultCoverColor("unknown"))
}

func TestStats(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()

	st, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Progress: []BookProgress{}}, st)

	long := Book{ID: "2", Title: "Long", CoverColor: "#000000", DateCreated: "2024-05-01", Chapters: []Chapter{
		{ID: "a", Title: "A", Pages: make([]Page, 0, 120)},
		{ID: "b", Title: "B"},
	}}
	for i := 0; i < 120; i++ {
		long.Chapters[0].Pages = append(long.Chapters[0].Pages, Page{ID: fmt.Sprintf("p%d", i), Title: "P"})
	}
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook(), "2": long}))

	st, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Books)
	assert.Equal(t, 3, st.Chapters)
	assert.Equal(t, 121, st.Pages)
	require.Len(t, st.Progress, 2)
	assert.Equal(t, BookProgress{BookID: "1", Title: "My Journal", CoverColor: "#3498db", Chapters: 1, Pages: 1, Percent: 1}, st.Progress[0])
	assert.Equal(t, 120, st.Progress[1].Pages)
	assert.Equal(t, 100, st.Progress[1].Percent, "progress is capped")
}
