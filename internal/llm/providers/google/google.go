// internal/llm/providers/google/google.go
package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Corphon/MagicStudio/internal/llm"
)

func init() {
	llm.Register("google", func() llm.Provider {
		return &Provider{
			models: []string{
				"gemini-1.5-flash",
				"gemini-2.0-flash",
				"gemini-2.5-flash",
			},
		}
	})
}

// Provider is the Gemini text capability
type Provider struct {
	client       *genai.Client
	defaultModel string
	models       []string
}

func (p *Provider) Initialize(config map[string]string) error {
	client, err := newClient(p.GetName(), config)
	if err != nil {
		return err
	}
	p.client = client

	if model := config["default_model"]; model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "gemini-1.5-flash"
	}
	return nil
}

func (p *Provider) GetName() string {
	return "google gemini"
}

func (p *Provider) GetSupportedModels() []string {
	return p.models
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(req.Temperature),
		SafetySettings: SafetySettings,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, convertError(p.GetName(), err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", llm.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("google gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
	}
	if text.Len() == 0 && candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: %s", llm.ErrContentBlocked, candidate.FinishReason)
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.CompletionResponse{
		Text:         text.String(),
		FinishReason: string(candidate.FinishReason),
		TokensUsed:   tokens,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
