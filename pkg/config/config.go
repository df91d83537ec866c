// Package config resolves moalif settings from flags, MOALIF_* environment
// variables, an optional config file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/unowned-ai/moalif/pkg/utils"
)

const EnvPrefix = "MOALIF"

// Keys.
const (
	KeyConfig             = "config"
	KeyDB                 = "db"
	KeyWAL                = "wal"
	KeySync               = "sync"
	KeyDocumentsDir       = "documents_dir"
	KeyShareDir           = "share_dir"
	KeyExportDir          = "export_dir"
	KeyAutoBackupEnabled  = "auto_backup_enabled"
	KeyAutoBackupSchedule = "auto_backup_schedule"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyStrictDecoding     = "strict_decoding"
)

// flagNames maps keys to the CLI flags bound to them.
var flagNames = map[string]string{
	KeyConfig:             "config",
	KeyDB:                 "db",
	KeyWAL:                "wal",
	KeySync:               "sync",
	KeyDocumentsDir:       "documents-dir",
	KeyShareDir:           "share-dir",
	KeyExportDir:          "export-dir",
	KeyAutoBackupEnabled:  "auto-backup",
	KeyAutoBackupSchedule: "schedule",
	KeyLogLevel:           "log-level",
	KeyLogFormat:          "log-format",
	KeyStrictDecoding:     "strict",
}

type (
	Config struct {
		Database
		Storage
		AutoBackup
		Log
		File string
	}

	Database struct {
		Path string
		WAL  bool
		Sync string
	}
	Storage struct {
		DocumentsDir   string
		ShareDir       string // empty disables sharing
		ExportDir      string
		StrictDecoding bool
	}
	AutoBackup struct {
		Enabled  bool
		Schedule string // daily, weekly or a cron expression
	}
	Log struct {
		Level  string
		Format string
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDB, utils.DefaultDBPath())
	v.SetDefault(KeyWAL, true)
	v.SetDefault(KeySync, "FULL")
	v.SetDefault(KeyDocumentsDir, utils.DefaultDocumentsDir())
	v.SetDefault(KeyShareDir, "")
	v.SetDefault(KeyExportDir, utils.DefaultExportDir())
	v.SetDefault(KeyAutoBackupEnabled, false)
	v.SetDefault(KeyAutoBackupSchedule, "daily")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyStrictDecoding, false)
}

// RegisterFlags adds the persistent flags that Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(flagNames[KeyConfig], "", "Config file (yaml, json or toml)")
	flags.String(flagNames[KeyDB], "", "Path to the moalif SQLite database file")
	flags.Bool(flagNames[KeyWAL], true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	flags.String(flagNames[KeySync], "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	flags.String(flagNames[KeyDocumentsDir], "", "Directory holding books_backup.json")
	flags.String(flagNames[KeyShareDir], "", "Directory backups and exports are shared into")
	flags.String(flagNames[KeyExportDir], "", "Directory exported books are written to")
	flags.Bool(flagNames[KeyAutoBackupEnabled], false, "Run automatic backups while the MCP server is up")
	flags.String(flagNames[KeyAutoBackupSchedule], "daily", "Automatic backup schedule: daily, weekly or a cron expression")
	flags.String(flagNames[KeyLogLevel], "info", "Log level (debug, info, warn, error)")
	flags.String(flagNames[KeyLogFormat], "text", "Log format (text, json)")
	flags.Bool(flagNames[KeyStrictDecoding], false, "Fail instead of falling back to an empty collection when stored books are corrupt")
}

// Load reads configuration from the OS filesystem.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return LoadFs(afero.NewOsFs(), flags)
}

// LoadFs is Load with the config file read from fsys.
func LoadFs(fsys afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(utils.DefaultDataDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: Database{
			Path: stringOr(v, KeyDB, utils.DefaultDBPath()),
			WAL:  v.GetBool(KeyWAL),
			Sync: strings.ToUpper(v.GetString(KeySync)),
		},
		Storage: Storage{
			DocumentsDir:   stringOr(v, KeyDocumentsDir, utils.DefaultDocumentsDir()),
			ShareDir:       v.GetString(KeyShareDir),
			ExportDir:      stringOr(v, KeyExportDir, utils.DefaultExportDir()),
			StrictDecoding: v.GetBool(KeyStrictDecoding),
		},
		AutoBackup: AutoBackup{
			Enabled:  v.GetBool(KeyAutoBackupEnabled),
			Schedule: v.GetString(KeyAutoBackupSchedule),
		},
		Log: Log{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		File: v.ConfigFileUsed(),
	}
	return cfg, nil
}

// stringOr treats an empty value (an unset path flag) as the default.
func stringOr(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}
