package backup

import (
	"errors"

	"github.com/unowned-ai/moalif/pkg/books"
)

var (
	ErrBackupUnavailable = errors.New("sharing is not available on this device")
	ErrBackupWrite       = errors.New("failed to write backup file")
	ErrShareFailed       = errors.New("failed to share backup file")
	ErrBackupRead        = errors.New("failed to read backup file")
	ErrBackupParse       = errors.New("backup file is not valid JSON")
	ErrInvalidBackup     = errors.New("backup file is invalid")
	ErrBackupNotFound    = errors.New("backup file not found")
)

var userMessages = []struct {
	err error
	msg string
}{
	{ErrBackupUnavailable, "Sharing is not available on this device. The backup was saved locally."},
	{ErrBackupWrite, "Could not create the backup file."},
	{ErrShareFailed, "The backup was created but could not be shared."},
	{ErrBackupRead, "Could not open the backup file."},
	{ErrBackupParse, "The selected file is not a backup."},
	{ErrInvalidBackup, "The backup file is damaged or from an unsupported version."},
	{ErrBackupNotFound, "No backup file was found."},
	{books.ErrStorageWrite, "Could not save your books."},
	{books.ErrStorageCorrupt, "Your saved books could not be read, so no backup was made."},
}

// UserMessage maps an error returned by this package to a message suitable
// for showing to the user. Unknown errors get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong: " + err.Error()
}
