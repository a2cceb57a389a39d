// internal/storage/audit_log.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// AuditLog is the append-only history of creation attempts
type AuditLog interface {
	// Append adds rec after every record already stored
	Append(ctx context.Context, rec models.AuditRecord) error
	// ReadAll returns every record, oldest first
	ReadAll(ctx context.Context) ([]models.AuditRecord, error)
	Close() error
}

// JSONFileAuditLog keeps the history as one indented JSON array and
// rewrites the whole file on every append.
type JSONFileAuditLog struct {
	files    *FileStorage
	filename string
	logger   *utils.Logger
}

// NewJSONFileAuditLog stores the array in filename under files.BaseDir
func NewJSONFileAuditLog(files *FileStorage, filename string, logger *utils.Logger) *JSONFileAuditLog {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &JSONFileAuditLog{files: files, filename: filename, logger: logger}
}

func (l *JSONFileAuditLog) Append(ctx context.Context, rec models.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return l.files.UpdateFile(l.filename, func(current []byte) ([]byte, error) {
		records, err := decodeRecords(current)
		if err != nil {
			// the corrupt content is dropped and the history restarts here
			l.logger.Warn("audit log unreadable, resetting to empty", map[string]interface{}{
				"file":  l.filename,
				"error": err.Error(),
			})
			records = nil
		}

		records = append(records, rec)
		return json.MarshalIndent(records, "", "    ")
	})
}

func (l *JSONFileAuditLog) ReadAll(ctx context.Context) ([]models.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := l.files.LoadFile(l.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.AuditRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	records, err := decodeRecords(content)
	if err != nil {
		return nil, apperrors.NewLogStoreCorruptError("the creation history could not be read", err)
	}
	return records, nil
}

func (l *JSONFileAuditLog) Close() error { return nil }

// decodeRecords treats nil and blank content as an empty history
func decodeRecords(content []byte) ([]models.AuditRecord, error) {
	records := []models.AuditRecord{}
	if len(bytes.TrimSpace(content)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, err
	}
	if records == nil {
		// literal null
		records = []models.AuditRecord{}
	}
	return records, nil
}
