// Package backup exports the whole book collection to a single JSON snapshot
// file, shares it, and restores the collection from such a file.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/unowned-ai/moalif/pkg/books"
	"github.com/unowned-ai/moalif/pkg/share"
	"golang.org/x/mod/semver"
)

const (
	// FileName is the single backup slot inside the document directory.
	FileName = "books_backup.json"
	// CurrentVersion is written into every snapshot.
	CurrentVersion = "1.0"
	// MimeType is passed to the sharer.
	MimeType = "application/json"
	// ShareTitle is the title shown by the sharer.
	ShareTitle = "Save backup"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Snapshot is the on-disk backup format.
type Snapshot struct {
	Books     books.Collection `json:"books"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version"`
}

// Service creates and restores backups. It never writes the live collection
// except through Repository.SaveBooks at the end of a validated restore.
type Service struct {
	repo        *books.Repository
	fs          afero.Fs
	documentDir string
	sharer      share.Sharer
	logger      *slog.Logger
	now         func() time.Time
	strict      bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStrictSource makes CreateBackup fail with books.ErrStorageCorrupt
// instead of snapshotting an empty collection when the stored books cannot be
// decoded. The existing backup file is left untouched.
func WithStrictSource() Option {
	return func(s *Service) { s.strict = true }
}

// NewService builds a backup service writing into documentDir on fsys.
// A nil sharer behaves like share.Unavailable.
func NewService(repo *books.Repository, fsys afero.Fs, documentDir string, sharer share.Sharer, opts ...Option) *Service {
	if sharer == nil {
		sharer = share.Unavailable{}
	}
	s := &Service{
		repo:        repo,
		fs:          fsys,
		documentDir: documentDir,
		sharer:      sharer,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path is the well-known backup location.
func (s *Service) Path() string {
	return filepath.Join(s.documentDir, FileName)
}

// CreateBackup writes a snapshot of every book to Path, replacing any previous
// backup, then hands the file to the sharer. The file stays on disk when the
// share step fails.
func (s *Service) CreateBackup(ctx context.Context) (string, error) {
	read := s.repo.GetAllBooks
	if s.strict {
		read = s.repo.GetAllBooksStrict
	}
	collection, err := read(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read books for backup: %w", err)
	}

	snap := Snapshot{
		Books:     collection,
		Timestamp: s.now().UTC().Format(timestampLayout),
		Version:   CurrentVersion,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackupWrite, err)
	}

	path := s.Path()
	if err := s.writeFile(path, data); err != nil {
		s.logger.Error("error creating backup", "path", path, "error", err)
		return "", fmt.Errorf("%w: %w", ErrBackupWrite, err)
	}
	s.logger.Info("backup written", "path", path, "books", len(collection), "bytes", len(data))

	if !s.sharer.IsAvailable(ctx) {
		return "", ErrBackupUnavailable
	}
	if err := s.sharer.Share(ctx, path, share.Options{MimeType: MimeType, Title: ShareTitle}); err != nil {
		s.logger.Error("error sharing backup", "path", path, "error", err)
		return "", fmt.Errorf("%w: %w", ErrShareFailed, err)
	}
	return path, nil
}

// writeFile replaces path through a temporary file so a failed write never
// leaves a truncated backup behind.
func (s *Service) writeFile(path string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return err
	}
	return nil
}

// RestoreFromBackup validates the snapshot at location and, only if it is
// valid, replaces the whole live collection with the snapshot's books.
func (s *Service) RestoreFromBackup(ctx context.Context, location string) error {
	data, err := afero.ReadFile(s.fs, location)
	if err != nil {
		s.logger.Error("error restoring from backup", "path", location, "error", err)
		return fmt.Errorf("%w: %w", ErrBackupRead, err)
	}

	snap, err := Decode(data)
	if err != nil {
		s.logger.Error("error restoring from backup", "path", location, "error", err)
		return err
	}

	if err := s.repo.SaveBooks(ctx, snap.Books); err != nil {
		return err
	}
	s.logger.Info("backup restored", "path", location, "books", len(snap.Books), "timestamp", snap.Timestamp)
	return nil
}

// LocateExistingBackup returns Path if a backup exists there.
func (s *Service) LocateExistingBackup(ctx context.Context) (string, error) {
	path := s.Path()
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackupRead, err)
	}
	if !ok {
		return "", ErrBackupNotFound
	}
	return path, nil
}

// Decode parses and validates snapshot bytes. Malformed JSON yields
// ErrBackupParse; anything structurally wrong yields ErrInvalidBackup.
func Decode(data []byte) (Snapshot, error) {
	if !json.Valid(data) {
		return Snapshot{}, ErrBackupParse
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("%w: top level is not an object", ErrInvalidBackup)
	}
	for _, name := range []string{"books", "timestamp", "version"} {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return Snapshot{}, fmt.Errorf("%w: missing %q", ErrInvalidBackup, name)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	if snap.Timestamp == "" {
		return Snapshot{}, fmt.Errorf("%w: empty timestamp", ErrInvalidBackup)
	}
	if snap.Version == "" {
		return Snapshot{}, fmt.Errorf("%w: empty version", ErrInvalidBackup)
	}
	if !Compatible(snap.Version) {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidBackup, snap.Version)
	}
	if err := snap.Books.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	return snap, nil
}

// Compatible reports whether a snapshot of the given version can be restored:
// it must share CurrentVersion's major version.
func Compatible(version string) bool {
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major("v"+CurrentVersion)
}
