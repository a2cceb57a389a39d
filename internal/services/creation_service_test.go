package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/storage"
	"github.com/Corphon/MagicStudio/internal/utils"
)

type pipeline struct {
	text     *fakeTextProvider
	image    *fakeImageProvider
	audit    *memoryAuditLog
	observer *recordingObserver
	service  *CreationService
}

func newPipeline(t *testing.T, reply string, imageErrs ...error) *pipeline {
	t.Helper()
	p := &pipeline{
		text:     &fakeTextProvider{reply: reply},
		image:    &fakeImageProvider{errs: imageErrs},
		audit:    &memoryAuditLog{},
		observer: &recordingObserver{},
	}
	extractor, err := llm.GetExtractor("inline")
	require.NoError(t, err)

	p.service = NewCreationService(
		NewModerator(p.text, "", 0),
		NewIllustrator(p.image, extractor, IllustratorOptions{Backoff: time.Millisecond}),
		p.audit,
		p.observer,
	)
	p.service.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local) }
	return p
}

func TestCreate_ApprovedAndRendered(t *testing.T) {
	p := newPipeline(t, "APPROVED")

	result, err := p.service.Create(context.Background(), "  a puppy with butterfly wings ")
	require.NoError(t, err)

	assert.Equal(t, models.StateRendered, result.State)
	assert.True(t, result.Verdict.Approved)
	require.NotNil(t, result.Illustration)
	assert.Equal(t, MsgRendered, result.UserMessage)
	assert.NotEmpty(t, result.AttemptID)
	assert.Equal(t, 1, p.image.calls())

	records := p.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditRecord{
		Timestamp: "2025-06-01 09:00:00",
		Prompt:    "a puppy with butterfly wings",
		Outcome:   models.OutcomeApproved,
	}, records[0])
	assert.Equal(t, &records[0], result.Record)

	assert.Equal(t, []models.AttemptState{
		models.StateSubmitted, models.StateModerating, models.StateGenerating, models.StateRendered,
	}, p.observer.states())
}

func TestCreate_ApprovalTokenGatesIllustrator(t *testing.T) {
	replies := map[string]bool{
		"APPROVED":               true,
		"approved":               true,
		"Sure, approved!":        true,
		models.RedirectMessage:   false,
		"No.":                    false,
		"I would rather not say": false,
	}

	for reply, approved := range replies {
		t.Run(reply, func(t *testing.T) {
			p := newPipeline(t, reply)
			result, err := p.service.Create(context.Background(), "a castle")
			require.NoError(t, err)

			if approved {
				assert.Equal(t, 1, p.image.calls())
				assert.Equal(t, models.StateRendered, result.State)
			} else {
				assert.Equal(t, 0, p.image.calls())
				assert.Equal(t, models.StateRejected, result.State)
			}
			assert.Len(t, p.audit.all(), 1)
		})
	}
}

func TestCreate_Rejected(t *testing.T) {
	p := newPipeline(t, models.RedirectMessage)

	result, err := p.service.Create(context.Background(), "a sad monster")
	require.NoError(t, err)

	assert.Equal(t, models.StateRejected, result.State)
	assert.Equal(t, models.RedirectMessage, result.UserMessage)
	assert.Nil(t, result.Illustration)

	records := p.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeBlocked, records[0].Outcome)
	assert.Equal(t, models.RedirectMessage, records[0].Detail)
	assert.Empty(t, result.Detail)
	assert.Equal(t, []models.AttemptState{
		models.StateSubmitted, models.StateModerating, models.StateRejected,
	}, p.observer.states())
}

func TestCreate_ModerationUnavailableIsBlockedWithDetail(t *testing.T) {
	p := newPipeline(t, "")
	p.text.err = errors.New("401 API key not valid")

	result, err := p.service.Create(context.Background(), "a castle")
	require.NoError(t, err)

	assert.Equal(t, models.StateRejected, result.State)
	assert.Contains(t, result.UserMessage, "API key not valid")
	assert.Equal(t, 0, p.image.calls())

	records := p.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeBlocked, records[0].Outcome)
	assert.Contains(t, records[0].Detail, "API key not valid")
}

func TestCreate_RateLimitThenSuccessLogsApprovedOnly(t *testing.T) {
	p := newPipeline(t, "APPROVED", rateLimit())

	result, err := p.service.Create(context.Background(), "a rainbow")
	require.NoError(t, err)

	assert.Equal(t, models.StateRendered, result.State)
	assert.Equal(t, 2, p.image.calls())

	records := p.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeApproved, records[0].Outcome)
}

func TestCreate_GenerationFailed(t *testing.T) {
	boom := &llm.APIError{Provider: "fake-image", StatusCode: 500, Message: "internal error"}
	p := newPipeline(t, "APPROVED", boom)

	result, err := p.service.Create(context.Background(), "a rainbow")
	require.NoError(t, err)

	assert.Equal(t, models.StateGenerationFailed, result.State)
	assert.Equal(t, MsgGenerationFailed, result.UserMessage)
	assert.Contains(t, result.Detail, "internal error")
	assert.Nil(t, result.Illustration)
	assert.Equal(t, 1, p.image.calls(), "non rate-limit failures are not retried")

	records := p.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeError, records[0].Outcome)
	assert.Contains(t, records[0].Detail, "internal error")
}

func TestCreate_EmptyIdea(t *testing.T) {
	for _, idea := range []string{"", "   ", "\n\t"} {
		p := newPipeline(t, "APPROVED")

		result, err := p.service.Create(context.Background(), idea)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, apperrors.IsValidationError(err))
		assert.Equal(t, MsgEmptyIdea, err.Error())

		assert.Equal(t, 0, p.text.calls())
		assert.Equal(t, 0, p.image.calls())
		assert.Empty(t, p.audit.all())
		assert.Empty(t, p.observer.states())
	}
}

func TestCreate_OneRecordPerAttempt(t *testing.T) {
	p := newPipeline(t, "APPROVED")
	ctx := context.Background()

	ideas := []string{"a cat", "", "a dog", "a bird"}
	for _, idea := range ideas {
		_, _ = p.service.Create(ctx, idea)
	}
	p.text.reply = "nope"
	_, _ = p.service.Create(ctx, "a shadow")

	records := p.audit.all()
	require.Len(t, records, 4)
	assert.Equal(t, "a cat", records[0].Prompt)
	assert.Equal(t, "a shadow", records[3].Prompt)
	assert.Equal(t, models.OutcomeBlocked, records[3].Outcome)
}

func TestCreate_AuditFailureKeepsOutcome(t *testing.T) {
	p := newPipeline(t, "APPROVED")
	p.audit.appendErr = errors.New("disk full")

	result, err := p.service.Create(context.Background(), "a cat")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.StateRendered, result.State)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCreate_RecordsEvenWhenCallerCancels(t *testing.T) {
	p := newPipeline(t, "APPROVED")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.service.Create(ctx, "a cat")
	require.NoError(t, err)
	assert.Equal(t, models.StateRendered, result.State)
	assert.Len(t, p.audit.all(), 1)
}

func TestCreate_WithJSONFileAuditLog(t *testing.T) {
	files, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	audit := storage.NewJSONFileAuditLog(files, "historial.json", utils.NewNopLogger())

	extractor, err := llm.GetExtractor("inline")
	require.NoError(t, err)
	svc := NewCreationService(
		NewModerator(&fakeTextProvider{reply: "APPROVED"}, "", 0),
		NewIllustrator(&fakeImageProvider{}, extractor, IllustratorOptions{Backoff: time.Millisecond}),
		audit, nil,
	)

	ctx := context.Background()
	for _, idea := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, idea)
		require.NoError(t, err)
	}

	records, err := audit.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "three", records[2].Prompt)
	assert.FileExists(t, filepath.Join(files.BaseDir, "historial.json"))
}
