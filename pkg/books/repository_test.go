package books

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/moalif/pkg/db"
	"github.com/unowned-ai/moalif/pkg/kv"
)

func setupTestStore(t *testing.T) kv.Store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenDBConnection(ctx, ":memory:", db.Options{Sync: "NORMAL"})
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.InitializeSchema(ctx, conn, db.TargetSchemaVersion))
	return kv.NewSQLiteStore(conn)
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC) }
}

func setupTestRepository(t *testing.T, opts ...RepositoryOption) (*Repository, kv.Store) {
	t.Helper()
	store := setupTestStore(t)
	opts = append([]RepositoryOption{WithIDGenerator(sequentialIDs()), WithClock(fixedClock())}, opts...)
	return NewRepository(store, opts...), store
}

// sampleBook is the "My Journal" scenario book.
func sampleBook() Book {
	return Book{
		ID:          "1",
		Title:       "My Journal",
		Author:      "Ahmad",
		Style:       StyleClassic,
		CoverColor:  "#3498db",
		DateCreated: "2024-01-01",
		Chapters: []Chapter{
			{
				ID:    "ch1",
				Title: "Chapter 1",
				Pages: []Page{
					{ID: "p1", Title: "Day One", Content: "Hello", Date: "2024-01-01"},
				},
			},
		},
	}
}

type failingStore struct {
	kv.Store
	setErr error
	getErr error
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestGetAllBooks_EmptyStore(t *testing.T) {
	repo, _ := setupTestRepository(t)

	books, err := repo.GetAllBooks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSaveBooks_RoundTrip(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ctx := context.Background()

	want := Collection{"1": sampleBook()}
	require.NoError(t, repo.SaveBooks(ctx, want))

	got, err := repo.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveBooks_RoundTripVariousCollections(t *testing.T) {
	withImage := sampleBook()
	withImage.ID = "2"
	withImage.CoverImage = "file:///covers/2.png"
	withImage.Chapters[0].Pages[0].ImageURL = "https://example.com/a.png"

	noChapters := Book{ID: "3", Title: "Empty", Style: StyleModern, DateCreated: "2024-02-01", Chapters: []Chapter{}}
	emptyChapter := Book{ID: "4", Title: "Draft", DateCreated: "2024-02-02", Chapters: []Chapter{{ID: "c", Title: "c", Pages: []Page{}}}}

	tests := []struct {
		name  string
		books Collection
	}{
		{"empty", Collection{}},
		{"single", Collection{"1": sampleBook()}},
		{"several", Collection{"1": sampleBook(), "2": withImage, "3": noChapters, "4": emptyChapter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setupTestRepository(t)
			ctx := context.Background()

			require.NoError(t, repo.SaveBooks(ctx, tt.books))
			got, err := repo.GetAllBooks(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.books, got)
		})
	}
}

func TestSaveBooks_NilCollectionStoresEmptyObject(t *testing.T) {
	repo, store := setupTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveBooks(ctx, nil))

	raw, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{}", raw)
}

func TestSaveBooks_StoreFailure(t *testing.T) {
	cause := errors.New("disk quota exceeded")
	store := failingStore{Store: kv.NewMemoryStore(), setErr: cause}
	repo := NewRepository(store)

	err := repo.SaveBooks(context.Background(), Collection{"1": sampleBook()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, cause)
}

func TestSaveBooks_RejectsInvalidCollection(t *testing.T) {
	dupChapters := sampleBook()
	dupChapters.Chapters = append(dupChapters.Chapters, Chapter{ID: "ch1", Title: "again"})

	dupPages := sampleBook()
	dupPages.Chapters[0].Pages = append(dupPages.Chapters[0].Pages, Page{ID: "p1", Title: "again"})

	tests := []struct {
		name  string
		books Collection
	}{
		{"key does not match id", Collection{"2": sampleBook()}},
		{"empty key", Collection{"": {ID: ""}}},
		{"duplicate chapter ids", Collection{"1": dupChapters}},
		{"duplicate page ids", Collection{"1": dupPages}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store := setupTestRepository(t)
			ctx := context.Background()

			err := repo.SaveBooks(ctx, tt.books)
			assert.ErrorIs(t, err, ErrInvalidCollection)

			_, ok, err := store.Get(ctx, StorageKey)
			require.NoError(t, err)
			assert.False(t, ok, "invalid collection must not be written")
		})
	}
}

func TestGetAllBooks_CorruptValue(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient falls back to empty and logs", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		repo, store := setupTestRepository(t, WithLogger(logger))
		require.NoError(t, store.Set(ctx, StorageKey, "{not json"))

		books, err := repo.GetAllBooks(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
		assert.Contains(t, logs.String(), "error reading books from storage")
	})

	t.Run("strict surfaces ErrStorageCorrupt", func(t *testing.T) {
		repo, store := setupTestRepository(t, WithStrictDecoding())
		require.NoError(t, store.Set(ctx, StorageKey, "{not json"))

		_, err := repo.GetAllBooks(ctx)
		assert.ErrorIs(t, err, ErrStorageCorrupt)
	})

	t.Run("GetAllBooksStrict ignores the decoding mode", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		require.NoError(t, store.Set(ctx, StorageKey, "{not json"))

		_, err := repo.GetAllBooksStrict(ctx)
		assert.ErrorIs(t, err, ErrStorageCorrupt)

		require.NoError(t, store.Set(ctx, StorageKey, `{"1":{"id":"1","title":"T"}}`))
		books, err := repo.GetAllBooksStrict(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("mutations never overwrite corrupt data", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		require.NoError(t, store.Set(ctx, StorageKey, "{not json"))

		_, err := repo.CreateBook(ctx, NewBook{Title: "New"})
		assert.ErrorIs(t, err, ErrStorageCorrupt)

		raw, _, err := store.Get(ctx, StorageKey)
		require.NoError(t, err)
		assert.Equal(t, "{not json", raw)
	})
}

func TestGetAllBooks_NullValue(t *testing.T) {
	repo, store := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StorageKey, "null"))

	books, err := repo.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetAllBooks_StoreReadFailure(t *testing.T) {
	cause := errors.New("i/o error")
	repo := NewRepository(failingStore{Store: kv.NewMemoryStore(), getErr: cause})

	_, err := repo.GetAllBooks(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestGetAllBooks_NoCache(t *testing.T) {
	repo, store := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveBooks(ctx, Collection{"1": sampleBook()}))

	// A write that bypasses the repository is visible on the next read.
	require.NoError(t, store.Set(ctx, StorageKey, "{}"))

	books, err := repo.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}
