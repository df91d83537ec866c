package share

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Share(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fsys, "/docs/books_backup.json", []byte(`{"books":{}}`), 0o644))

	at := time.Date(2024, 6, 25, 8, 30, 0, 0, time.UTC)
	d := NewDirectory(fsys, "/outbox")
	d.Now = func() time.Time { return at }

	require.True(t, d.IsAvailable(ctx))
	require.NoError(t, d.Share(ctx, "/docs/books_backup.json", Options{MimeType: "application/json"}))

	target := d.Target("/docs/books_backup.json", at)
	assert.Equal(t, "/outbox/books_backup_20240625T083000Z.json", target)

	data, err := afero.ReadFile(fsys, target)
	require.NoError(t, err)
	assert.Equal(t, `{"books":{}}`, string(data))
}

func TestDirectory_Unavailable(t *testing.T) {
	ctx := context.Background()

	d := NewDirectory(afero.NewMemMapFs(), "")
	assert.False(t, d.IsAvailable(ctx))
	assert.ErrorIs(t, d.Share(ctx, "/x", Options{}), ErrUnavailable)

	ro := &Directory{Src: afero.NewMemMapFs(), Dst: afero.NewReadOnlyFs(afero.NewMemMapFs()), Dir: "/outbox"}
	assert.False(t, ro.IsAvailable(ctx))
}

func TestDirectory_MissingSource(t *testing.T) {
	d := NewDirectory(afero.NewMemMapFs(), "/outbox")
	err := d.Share(context.Background(), "/docs/missing.json", Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestWriter_Share(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/docs/a.md", []byte("# A"), 0o644))

	var out bytes.Buffer
	w := &Writer{Fs: fsys, W: &out}
	require.True(t, w.IsAvailable(context.Background()))
	require.NoError(t, w.Share(context.Background(), "/docs/a.md", Options{}))
	assert.Equal(t, "# A", out.String())

	assert.False(t, (&Writer{Fs: fsys}).IsAvailable(context.Background()))
}

func TestUnavailable(t *testing.T) {
	var s Sharer = Unavailable{}
	assert.False(t, s.IsAvailable(context.Background()))
	assert.ErrorIs(t, s.Share(context.Background(), "/x", Options{}), ErrUnavailable)
}
