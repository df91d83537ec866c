package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moalif/pkg/kv"
)

// StorageKey is the single key the whole collection is stored under.
const StorageKey = "@books"

// DateLayout is the ISO-8601 calendar date format used for dateCreated and page dates.
const DateLayout = "2006-01-02"

var (
	ErrStorageWrite      = errors.New("failed to save books")
	ErrStorageCorrupt    = errors.New("stored books are corrupt")
	ErrInvalidCollection = errors.New("invalid book collection")
	ErrBookNotFound      = errors.New("book not found")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrInvalidStyle      = errors.New("unknown book style")
	ErrEmptyTitle        = errors.New("title is required")
)

// Repository is the only reader and writer of the persisted collection.
// It keeps no cache; every call goes to the store.
type Repository struct {
	store  kv.Store
	logger *slog.Logger
	strict bool
	now    func() time.Time
	newID  func() string

	// mu serializes writers in this process so read-modify-write helpers
	// cannot lose each other's updates.
	mu sync.Mutex
}

type RepositoryOption func(*Repository)

func WithLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) { r.logger = logger }
}

// WithStrictDecoding makes GetAllBooks return ErrStorageCorrupt instead of an
// empty collection when the stored value cannot be decoded.
func WithStrictDecoding() RepositoryOption {
	return func(r *Repository) { r.strict = true }
}

func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

func WithIDGenerator(newID func() string) RepositoryOption {
	return func(r *Repository) { r.newID = newID }
}

func NewRepository(store kv.Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAllBooks reads the entire collection. A store that was never written
// yields an empty collection. A corrupt value is logged and also yields an
// empty collection unless strict decoding is enabled.
func (r *Repository) GetAllBooks(ctx context.Context) (Collection, error) {
	books, err := r.load(ctx)
	if errors.Is(err, ErrStorageCorrupt) && !r.strict {
		r.logger.Error("error reading books from storage, falling back to empty collection", "key", StorageKey, "error", err)
		return Collection{}, nil
	}
	return books, err
}

// GetAllBooksStrict reads the collection like GetAllBooks but reports corrupt
// stored data as ErrStorageCorrupt whatever the decoding mode.
func (r *Repository) GetAllBooksStrict(ctx context.Context) (Collection, error) {
	return r.load(ctx)
}

// SaveBooks validates books and overwrites the stored collection with it.
func (r *Repository) SaveBooks(ctx context.Context, books Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, books)
}

func (r *Repository) load(ctx context.Context) (Collection, error) {
	raw, ok, err := r.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}
	if !ok {
		return Collection{}, nil
	}

	var books Collection
	if err := json.Unmarshal([]byte(raw), &books); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
	}
	if books == nil {
		books = Collection{}
	}
	return books, nil
}

func (r *Repository) save(ctx context.Context, books Collection) error {
	if books == nil {
		books = Collection{}
	}
	if err := books.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err := r.store.Set(ctx, StorageKey, string(raw)); err != nil {
		r.logger.Error("error saving books to storage", "key", StorageKey, "error", err)
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// update runs fn against a freshly loaded collection and saves the result.
// Corrupt stored data is never overwritten here, whatever the decoding mode.
func (r *Repository) update(ctx context.Context, fn func(Collection) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	books, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(books); err != nil {
		return err
	}
	return r.save(ctx, books)
}

func (r *Repository) today() string {
	return r.now().Format(DateLayout)
}
