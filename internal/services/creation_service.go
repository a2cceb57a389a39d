// internal/services/creation_service.go
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/storage"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// User-facing messages of the creation view
const (
	MsgEmptyIdea        = "Write something to start the magic."
	MsgRendered         = "Your magical drawing!"
	MsgGenerationFailed = "Oops! We ran out of technical glitter."
)

// ModerationStep screens an idea
type ModerationStep interface {
	Moderate(ctx context.Context, idea string) (models.Verdict, error)
}

// IllustrationStep renders an approved idea
type IllustrationStep interface {
	Illustrate(ctx context.Context, idea string) (*models.Illustration, error)
}

// AttemptObserver receives every state transition of an attempt
type AttemptObserver interface {
	OnAttemptEvent(event models.AttemptEvent)
}

// CreationService runs the moderate, illustrate, record pipeline. Attempts
// are serialised: one runs to completion before the next starts.
type CreationService struct {
	mu sync.Mutex

	moderator   ModerationStep
	illustrator IllustrationStep
	audit       storage.AuditLog
	observer    AttemptObserver

	now     func() time.Time
	logger  *utils.Logger
	metrics *utils.APIMetrics
}

// NewCreationService wires the pipeline. observer may be nil.
func NewCreationService(moderator ModerationStep, illustrator IllustrationStep, audit storage.AuditLog, observer AttemptObserver) *CreationService {
	return &CreationService{
		moderator:   moderator,
		illustrator: illustrator,
		audit:       audit,
		observer:    observer,
		now:         time.Now,
		logger:      utils.GetLogger(),
		metrics:     utils.GetAPIMetrics(),
	}
}

// Create runs one attempt. An empty idea fails with a validation error before
// any remote call or record. Every other attempt ends in exactly one audit
// record; a failure to write it is returned together with the result.
func (s *CreationService) Create(ctx context.Context, idea string) (*models.AttemptResult, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, apperrors.NewValidationError(MsgEmptyIdea, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &models.AttemptResult{AttemptID: uuid.NewString()}
	s.transition(result, models.StateSubmitted, "")
	s.transition(result, models.StateModerating, "")

	var outcome models.Outcome
	var logDetail string
	verdict, modErr := s.moderator.Moderate(ctx, idea)
	result.Verdict = verdict

	if !verdict.Approved {
		outcome = models.OutcomeBlocked
		result.UserMessage = verdict.Message
		// the record keeps the diagnostic when moderation failed, the redirect otherwise
		logDetail = verdict.Message
		if modErr != nil {
			result.Detail = modErr.Error()
			logDetail = result.Detail
		}
		s.transition(result, models.StateRejected, verdict.Message)
	} else {
		s.transition(result, models.StateGenerating, "")

		illustration, err := s.illustrator.Illustrate(ctx, idea)
		if err != nil {
			outcome = models.OutcomeError
			result.UserMessage = MsgGenerationFailed
			result.Detail = err.Error()
			logDetail = result.Detail
			s.logger.Error("illustration failed", map[string]interface{}{
				"attempt_id": result.AttemptID,
				"error":      err.Error(),
			})
			s.metrics.RecordError(string(apperrors.TypeOf(err)), "illustrator")
			s.transition(result, models.StateGenerationFailed, MsgGenerationFailed)
		} else {
			outcome = models.OutcomeApproved
			result.Illustration = illustration
			result.UserMessage = MsgRendered
			s.transition(result, models.StateRendered, MsgRendered)
		}
	}

	record := models.NewAuditRecord(s.now(), idea, outcome, logDetail)
	result.Record = &record
	s.metrics.RecordAttempt(string(outcome))

	s.logger.Info("creation attempt finished", map[string]interface{}{
		"attempt_id": result.AttemptID,
		"state":      string(result.State),
		"outcome":    string(outcome),
	})

	// the record is written even when the caller has gone away
	if err := s.audit.Append(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to append audit record", map[string]interface{}{
			"attempt_id": result.AttemptID,
			"error":      err.Error(),
		})
		s.metrics.RecordError(string(apperrors.ErrorTypeError), "audit_log")
		return result, apperrors.WrapError(err, "attempt finished but was not recorded", apperrors.ErrorTypeError)
	}
	return result, nil
}

func (s *CreationService) transition(result *models.AttemptResult, state models.AttemptState, message string) {
	result.State = state
	if s.observer == nil {
		return
	}
	s.observer.OnAttemptEvent(models.AttemptEvent{
		AttemptID: result.AttemptID,
		State:     state,
		Message:   message,
	})
}
