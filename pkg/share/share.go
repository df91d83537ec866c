// Package share hands files produced by moalif (backups, exported books) to
// something outside the application: a synced folder, a pipe, or nothing.
package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// ErrUnavailable is returned by Share when the sharer cannot deliver anything.
var ErrUnavailable = errors.New("sharing is not available")

// Options describe the shared file to the receiver.
type Options struct {
	MimeType string
	Title    string
}

// Sharer moves a file off the application's private document area.
type Sharer interface {
	IsAvailable(ctx context.Context) bool
	Share(ctx context.Context, path string, opts Options) error
}

// Directory copies shared files into Dir, typically a folder that another tool
// syncs off the device. Each share gets a timestamped name so earlier copies
// are kept.
type Directory struct {
	Src afero.Fs
	Dst afero.Fs
	Dir string
	Now func() time.Time
}

// NewDirectory shares from fsys into dir on the same filesystem.
func NewDirectory(fsys afero.Fs, dir string) *Directory {
	return &Directory{Src: fsys, Dst: fsys, Dir: dir, Now: time.Now}
}

func (d *Directory) IsAvailable(ctx context.Context) bool {
	if d.Dir == "" {
		return false
	}
	if err := d.Dst.MkdirAll(d.Dir, 0o755); err != nil {
		return false
	}
	ok, err := afero.IsDir(d.Dst, d.Dir)
	return err == nil && ok
}

// Target returns the destination path a share of path at t would be written to.
func (d *Directory) Target(path string, t time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	return filepath.Join(d.Dir, fmt.Sprintf("%s_%s%s", stem, t.UTC().Format("20060102T150405Z"), ext))
}

func (d *Directory) Share(ctx context.Context, path string, opts Options) error {
	if !d.IsAvailable(ctx) {
		return ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	src, err := d.Src.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for sharing: %w", path, err)
	}
	defer src.Close()

	target := d.Target(path, now())
	dst, err := d.Dst.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", path, target, err)
	}
	return dst.Close()
}

// Writer streams shared files to W, e.g. stdout for `moalif backup create --stdout`.
type Writer struct {
	Fs afero.Fs
	W  io.Writer
}

func (w *Writer) IsAvailable(ctx context.Context) bool {
	return w.W != nil
}

func (w *Writer) Share(ctx context.Context, path string, opts Options) error {
	if w.W == nil {
		return ErrUnavailable
	}
	f, err := w.Fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for sharing: %w", path, err)
	}
	defer f.Close()
	_, err = io.Copy(w.W, f)
	return err
}

// Unavailable is the sharer of a host with no sharing mechanism.
type Unavailable struct{}

func (Unavailable) IsAvailable(context.Context) bool { return false }

func (Unavailable) Share(context.Context, string, Options) error { return ErrUnavailable }
