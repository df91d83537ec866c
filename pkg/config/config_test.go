package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/moalif/pkg/utils"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("moalif", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs(), newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, utils.DefaultDBPath(), cfg.Database.Path)
	assert.True(t, cfg.Database.WAL)
	assert.Equal(t, "FULL", cfg.Database.Sync)
	assert.Equal(t, utils.DefaultDocumentsDir(), cfg.Storage.DocumentsDir)
	assert.Equal(t, utils.DefaultExportDir(), cfg.Storage.ExportDir)
	assert.Empty(t, cfg.Storage.ShareDir)
	assert.False(t, cfg.Storage.StrictDecoding)
	assert.False(t, cfg.AutoBackup.Enabled)
	assert.Equal(t, "daily", cfg.AutoBackup.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Precedence(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/moalif/config.yaml", []byte(`
db: /from/file.db
share_dir: /from/file/outbox
auto_backup_enabled: true
auto_backup_schedule: weekly
log_level: debug
`), 0o644))

	t.Setenv("MOALIF_SHARE_DIR", "/from/env/outbox")
	t.Setenv("MOALIF_LOG_LEVEL", "warn")
	t.Setenv("MOALIF_SYNC", "normal")

	cfg, err := LoadFs(fsys, newFlags(t, "--config", "/etc/moalif/config.yaml", "--log-level", "error", "--strict"))
	require.NoError(t, err)

	assert.Equal(t, "/etc/moalif/config.yaml", cfg.File)
	assert.Equal(t, "/from/file.db", cfg.Database.Path, "file beats default")
	assert.Equal(t, "/from/env/outbox", cfg.Storage.ShareDir, "env beats file")
	assert.Equal(t, "error", cfg.Log.Level, "flag beats env")
	assert.Equal(t, "NORMAL", cfg.Database.Sync)
	assert.True(t, cfg.Storage.StrictDecoding)
	assert.True(t, cfg.AutoBackup.Enabled)
	assert.Equal(t, "weekly", cfg.AutoBackup.Schedule)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := LoadFs(afero.NewMemMapFs(), newFlags(t, "--config", "/nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NilFlags(t *testing.T) {
	t.Setenv("MOALIF_DB", "/env/books.db")
	cfg, err := LoadFs(afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/env/books.db", cfg.Database.Path)
}
