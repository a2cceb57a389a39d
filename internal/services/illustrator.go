// internal/services/illustrator.go
package services

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// IllustrationStyle prefixes every idea before it reaches the image capability
const IllustrationStyle = "Children's book illustration, vibrant pastel colors, magical and safe for kids: "

// DefaultRetryBackoff is the pause before the single rate-limit retry
const DefaultRetryBackoff = 12 * time.Second

// EnrichPrompt wraps an idea in the fixed illustration style
func EnrichPrompt(idea string) string {
	return IllustrationStyle + idea
}

// Illustrator renders approved ideas with an image-generation capability
type Illustrator struct {
	provider    llm.ImageProvider
	extractor   llm.ImageExtractor
	model       string
	aspectRatio string
	backoff     time.Duration
	timeout     time.Duration
	logger      *utils.Logger
	metrics     *utils.APIMetrics
}

// IllustratorOptions tunes an Illustrator. Zero values take the defaults.
type IllustratorOptions struct {
	Model       string
	AspectRatio string
	Backoff     time.Duration
	Timeout     time.Duration
}

// NewIllustrator pairs a provider with the extractor for its response shape
func NewIllustrator(provider llm.ImageProvider, extractor llm.ImageExtractor, opts IllustratorOptions) *Illustrator {
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &Illustrator{
		provider:    provider,
		extractor:   extractor,
		model:       opts.Model,
		aspectRatio: opts.AspectRatio,
		backoff:     backoff,
		timeout:     opts.Timeout,
		logger:      utils.GetLogger(),
		metrics:     utils.GetAPIMetrics(),
	}
}

// Illustrate renders one idea. A rate-limit reply is retried once after the
// backoff; every other failure returns immediately as GenerationFailed.
func (il *Illustrator) Illustrate(ctx context.Context, idea string) (*models.Illustration, error) {
	prompt := EnrichPrompt(idea)

	resp, err := il.generate(ctx, prompt)
	if err != nil && llm.IsRateLimited(err) {
		il.logger.Warn("image capability rate limited, retrying once", map[string]interface{}{
			"provider": il.provider.GetName(),
			"backoff":  il.backoff.String(),
			"error":    err.Error(),
		})
		il.metrics.RecordRateLimitRetry()

		if waitErr := sleep(ctx, il.backoff); waitErr != nil {
			return nil, apperrors.NewGenerationFailedError("image generation cancelled during backoff", waitErr)
		}

		resp, err = il.generate(ctx, prompt)
		if err != nil && llm.IsRateLimited(err) {
			return nil, apperrors.NewGenerationFailedError("image generation failed",
				apperrors.NewRateLimitedError("still rate limited after retry", err))
		}
	}
	if err != nil {
		return nil, apperrors.NewGenerationFailedError("image generation failed", err)
	}

	image, err := il.extractor.Extract(resp.Body)
	if err != nil {
		il.logger.Error("unrecognized image response", map[string]interface{}{
			"provider":  il.provider.GetName(),
			"extractor": il.extractor.Name(),
			"error":     err.Error(),
		})
		return nil, apperrors.NewGenerationFailedError("image generation failed", err)
	}

	return &models.Illustration{
		Data:     image.Data,
		MIMEType: image.MIMEType,
		Prompt:   prompt,
	}, nil
}

func (il *Illustrator) generate(ctx context.Context, prompt string) (*llm.ImageResponse, error) {
	if il.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, il.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := il.provider.GenerateImages(ctx, llm.ImageRequest{
		Prompt:      prompt,
		Count:       1,
		AspectRatio: il.aspectRatio,
		Model:       il.model,
	})
	il.metrics.RecordRemoteCall("image", il.provider.GetName(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s returned an empty response", il.provider.GetName())
	}
	return resp, nil
}

// sleep blocks for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
