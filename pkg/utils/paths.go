package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "moalif"

// DefaultDataDir returns the per-OS directory holding moalif's database and
// documents.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName)
	default: // Linux and other UNIX-like systems.
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		return filepath.Join(homeDir, ".local", "share", appName)
	}
}

func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), appName+".db")
}

// DefaultDocumentsDir is where backups are written.
func DefaultDocumentsDir() string {
	return filepath.Join(DefaultDataDir(), "documents")
}

func DefaultExportDir() string {
	return filepath.Join(DefaultDataDir(), "exports")
}

// ExpandPath resolves a leading "~/" and makes path absolute.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", path, err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", path, err)
	}
	return absPath, nil
}

// ResolveAndEnsureDBPath expands providedPath, falling back to DefaultDBPath,
// and creates the directory that will hold the database file. ":memory:" is
// passed through untouched.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	if providedPath == ":memory:" {
		return providedPath, nil
	}
	targetPath := providedPath
	if targetPath == "" {
		targetPath = DefaultDBPath()
	}

	targetPath, err := ExpandPath(targetPath)
	if err != nil {
		return "", err
	}

	dbDir := filepath.Dir(targetPath)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory '%s' for database: %w", dbDir, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat directory '%s' for database: %w", dbDir, err)
	}

	return targetPath, nil
}
