// internal/services/moderator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// GuardianInstruction is the fixed persona and policy sent ahead of every idea
var GuardianInstruction = fmt.Sprintf(
	"You are the Color Fairy, a friendly magical guardian of a young child's world. "+
		"Your mission is to keep that world bright and safe. "+
		"If the idea below is safe and cheerful, reply with the single word %s and nothing else. "+
		"If it contains anything sad, scary or violent, do not repeat any of it; "+
		"reply only with this gentle alternative: '%s'",
	models.ApprovalMarker, models.RedirectMessage)

// Moderator screens ideas with a text-generation capability
type Moderator struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
	logger   *utils.Logger
	metrics  *utils.APIMetrics
}

// NewModerator wraps an initialized text provider. timeout bounds each call; zero means none.
func NewModerator(provider llm.Provider, model string, timeout time.Duration) *Moderator {
	return &Moderator{
		provider: provider,
		model:    model,
		timeout:  timeout,
		logger:   utils.GetLogger(),
		metrics:  utils.GetAPIMetrics(),
	}
}

// Moderate classifies one idea. A failed remote call never escapes as a
// fault: the verdict is a rejection carrying the diagnostic, and the
// returned ModerationUnavailable error lets the caller record the detail.
func (m *Moderator) Moderate(ctx context.Context, idea string) (models.Verdict, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := m.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       "Child: " + idea,
		SystemPrompt: GuardianInstruction,
		Model:        m.model,
		Temperature:  0.2,
		MaxTokens:    100,
	})
	m.metrics.RecordRemoteCall("text", m.provider.GetName(), err, time.Since(start))

	if err != nil {
		// the provider's own safety filter withheld the reply
		if errors.Is(err, llm.ErrContentBlocked) {
			m.logger.Info("idea blocked by provider safety filter", map[string]interface{}{
				"provider": m.provider.GetName(),
				"reason":   err.Error(),
			})
			return models.Verdict{Approved: false, Message: models.RedirectMessage}, nil
		}

		m.logger.Error("moderation call failed", map[string]interface{}{
			"provider": m.provider.GetName(),
			"error":    err.Error(),
		})
		m.metrics.RecordError(string(apperrors.ErrorTypeModerationUnavailable), "moderator")
		return models.Verdict{
				Approved: false,
				Message:  fmt.Sprintf("The Color Fairy could not check your idea right now. Please try again in a moment. (%v)", err),
			},
			apperrors.NewModerationUnavailableError("moderation call failed", err)
	}

	return ParseVerdict(resp.Text), nil
}

// ParseVerdict approves any reply containing the approval marker, ignoring case.
// Any other reply is a rejection shown to the child as-is.
func ParseVerdict(reply string) models.Verdict {
	if strings.Contains(strings.ToUpper(reply), models.ApprovalMarker) {
		return models.Verdict{Approved: true, Message: models.ApprovalMarker}
	}

	message := strings.TrimSpace(reply)
	if message == "" {
		message = models.RedirectMessage
	}
	return models.Verdict{Approved: false, Message: message}
}
