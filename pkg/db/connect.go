package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Options controls how the SQLite connection is opened.
type Options struct {
	// WAL sets journal_mode=WAL.
	WAL bool
	// Sync is the synchronous pragma (OFF, NORMAL, FULL, EXTRA). Empty leaves the SQLite default.
	Sync string
	// BusyTimeoutMS makes writers wait for a lock instead of failing with SQLITE_BUSY.
	BusyTimeoutMS int
}

// DefaultOptions are used by the CLI and the MCP server unless overridden.
var DefaultOptions = Options{WAL: true, Sync: "FULL", BusyTimeoutMS: 5000}

func buildDSN(base string, opts Options) (string, error) {
	params := url.Values{}

	if opts.WAL {
		params.Add("_journal_mode", "WAL")
	}

	if opts.Sync != "" {
		mode := strings.ToUpper(opts.Sync)
		if !validSyncModes[mode] {
			return "", fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", opts.Sync)
		}
		params.Add("_synchronous", mode)
	}

	if opts.BusyTimeoutMS > 0 {
		params.Add("_busy_timeout", fmt.Sprint(opts.BusyTimeoutMS))
	}

	if len(params) == 0 {
		return base, nil
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode(), nil
}

// OpenDBConnection opens the SQLite database at path and verifies it is reachable.
// The pool is limited to one connection: SQLite has a single writer, and
// ":memory:" databases are private to the connection that created them.
func OpenDBConnection(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	dsn, err := buildDSN(path, opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", dsn, err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", dsn, err)
	}

	return conn, nil
}
