// internal/services/history_service.go
package services

import (
	"context"
	"errors"

	"github.com/Corphon/MagicStudio/internal/auth"
	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/storage"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// MsgWrongPassword is shown in the parental view on a mismatch
const MsgWrongPassword = "Incorrect password"

// HistoryService serves the parental view of the audit log
type HistoryService struct {
	audit  storage.AuditLog
	gate   *auth.PasswordGate
	logger *utils.Logger
}

func NewHistoryService(audit storage.AuditLog, gate *auth.PasswordGate) *HistoryService {
	return &HistoryService{audit: audit, gate: gate, logger: utils.GetLogger()}
}

// Recent returns every record, newest first
func (s *HistoryService) Recent(ctx context.Context) ([]models.AuditRecord, error) {
	records, err := s.audit.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	reversed := make([]models.AuditRecord, len(records))
	for i, rec := range records {
		reversed[len(records)-1-i] = rec
	}
	return reversed, nil
}

// Authorize checks the shared secret
func (s *HistoryService) Authorize(password string) error {
	switch err := s.gate.Check(password); {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrEmptyPassword):
		return apperrors.NewValidationError("password is required", err)
	default:
		s.logger.Warn("parental view: wrong password", nil)
		return apperrors.NewUnauthorizedError(MsgWrongPassword, err)
	}
}

// Unlock builds the parental panel for a submitted password. An empty
// password shows neither records nor an error; a wrong one shows only the error.
func (s *HistoryService) Unlock(ctx context.Context, password string) models.ParentalPanel {
	if password == "" {
		return models.ParentalPanel{}
	}
	if err := s.Authorize(password); err != nil {
		return models.ParentalPanel{Error: MsgWrongPassword}
	}

	records, err := s.Recent(ctx)
	if err != nil {
		s.logger.Error("failed to read creation history", map[string]interface{}{
			"error": err.Error(),
		})
		return models.ParentalPanel{Unlocked: true, Records: []models.AuditRecord{}, Error: "The creation history could not be read."}
	}
	return models.ParentalPanel{Unlocked: true, Records: records}
}
