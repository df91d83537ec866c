package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this build understands.
	TargetSchemaVersion int64 = 1
	// StoreComponent names the key-value store component in moalif_versions.
	StoreComponent = "bookstore"
)

// GetComponentSchemaVersion returns the schema version recorded for componentName.
// A missing row or a missing moalif_versions table both report version 0.
func GetComponentSchemaVersion(ctx context.Context, db *sql.DB, componentName string) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT version FROM moalif_versions WHERE component = ?;`, componentName).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "moalif_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates all tables and records schemaVersionToSet for the store component.
func InitializeSchema(ctx context.Context, db *sql.DB, schemaVersionToSet int64) error {
	if _, err := db.ExecContext(ctx, SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	const upsertVersion = `
INSERT INTO moalif_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := db.ExecContext(ctx, upsertVersion, StoreComponent, schemaVersionToSet); err != nil {
		return fmt.Errorf("failed to record version %d for component %s: %w", schemaVersionToSet, StoreComponent, err)
	}
	return nil
}

// UpgradeDB brings the store component in db up to target. Only initialization
// of an empty database is supported; any other version mismatch is an error.
// dbIdentifier is used in messages only.
func UpgradeDB(ctx context.Context, db *sql.DB, dbIdentifier string, target int64, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	current, err := GetComponentSchemaVersion(ctx, db, StoreComponent)
	if err != nil {
		return err
	}

	switch {
	case current == 0:
		logger.Info("initializing database schema", "db", dbIdentifier, "component", StoreComponent, "version", target)
		if err := InitializeSchema(ctx, db, target); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", StoreComponent, dbIdentifier, err)
		}
		return nil
	case current == target:
		logger.Debug("database schema up to date", "db", dbIdentifier, "version", current)
		return nil
	case current < target:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", StoreComponent, dbIdentifier, current, target)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", StoreComponent, dbIdentifier, current, target)
	}
}
