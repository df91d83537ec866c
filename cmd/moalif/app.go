package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/unowned-ai/moalif/pkg/backup"
	"github.com/unowned-ai/moalif/pkg/books"
	"github.com/unowned-ai/moalif/pkg/config"
	pkgdb "github.com/unowned-ai/moalif/pkg/db"
	"github.com/unowned-ai/moalif/pkg/export"
	"github.com/unowned-ai/moalif/pkg/kv"
	"github.com/unowned-ai/moalif/pkg/logging"
	"github.com/unowned-ai/moalif/pkg/share"
	"github.com/unowned-ai/moalif/pkg/utils"
)

// app holds everything a command needs, opened from the resolved config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	dbPath   string
	docsDir  string
	fs       afero.Fs
	sharer   share.Sharer
	repo     *books.Repository
	backups  *backup.Service
	exporter *export.Exporter
}

func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}

	dbPath, err := utils.ResolveAndEnsureDBPath(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	opts := pkgdb.DefaultOptions
	opts.WAL = cfg.Database.WAL
	opts.Sync = cfg.Database.Sync
	conn, err := pkgdb.OpenDBConnection(ctx, dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pkgdb.UpgradeDB(ctx, conn, dbPath, pkgdb.TargetSchemaVersion, logger); err != nil {
		conn.Close()
		return nil, err
	}

	documentsDir, err := utils.ExpandPath(cfg.Storage.DocumentsDir)
	if err != nil {
		conn.Close()
		return nil, err
	}
	exportDir, err := utils.ExpandPath(cfg.Storage.ExportDir)
	if err != nil {
		conn.Close()
		return nil, err
	}

	fsys := afero.NewOsFs()
	var sharer share.Sharer = share.Unavailable{}
	if cfg.Storage.ShareDir != "" {
		shareDir, err := utils.ExpandPath(cfg.Storage.ShareDir)
		if err != nil {
			conn.Close()
			return nil, err
		}
		sharer = share.NewDirectory(fsys, shareDir)
	}

	repoOpts := []books.RepositoryOption{books.WithLogger(logger)}
	if cfg.Storage.StrictDecoding {
		repoOpts = append(repoOpts, books.WithStrictDecoding())
	}
	repo := books.NewRepository(kv.NewSQLiteStore(conn), repoOpts...)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      conn,
		dbPath:  dbPath,
		docsDir: documentsDir,
		fs:      fsys,
		sharer:  sharer,
		repo:    repo,
		backups: backup.NewService(repo, fsys, documentsDir, sharer, backup.WithLogger(logger)),
	}
	a.exporter = export.NewExporter(repo, fsys, exportDir, sharer, logger)
	logger.Debug("opened moalif", "db", dbPath, "documents_dir", documentsDir, "config_file", cfg.File)
	return a, nil
}

// backupsTo returns a backup service that shares through sharer instead of
// the configured one.
func (a *app) backupsTo(sharer share.Sharer) *backup.Service {
	return backup.NewService(a.repo, a.fs, a.docsDir, sharer, backup.WithLogger(a.logger))
}

// scheduledBackups skips a run rather than replace the last good backup
// when the stored books are corrupt.
func (a *app) scheduledBackups() *backup.Service {
	return backup.NewService(a.repo, a.fs, a.docsDir, a.sharer, backup.WithLogger(a.logger), backup.WithStrictSource())
}

// Close checkpoints the WAL back into the main database file and closes it.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	if a.cfg.Database.WAL {
		if _, err := a.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
			a.logger.Warn("WAL checkpoint failed during close", "error", err)
		}
	}
	return a.db.Close()
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}
