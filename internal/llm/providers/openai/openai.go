// internal/llm/providers/openai/openai.go
package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Corphon/MagicStudio/internal/llm"
)

func init() {
	llm.Register("openai", func() llm.Provider { return &Provider{} })
	llm.RegisterImage("openai", func() llm.ImageProvider { return &ImageProvider{} })
}

func clientOptions(config map[string]string, defaultBaseURL string) ([]option.RequestOption, error) {
	apiKey := config["api_key"]
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY or TEXT_API_KEY")
	}
	// the illustrator owns the retry policy
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	baseURL := config["base_url"]
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return opts, nil
}

// convertError turns SDK errors into llm.APIError so rate limits classify uniformly
func convertError(provider string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.APIError{
			Provider:   provider,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
		}
	}
	return err
}

// Provider implements llm.Provider with the chat completions API. The zero
// value talks to OpenAI; compatible services preset name, endpoint and model.
type Provider struct {
	client       openai.Client
	defaultModel string

	name    string
	baseURL string
	model   string
	models  []string
}

func (p *Provider) Initialize(config map[string]string) error {
	opts, err := clientOptions(config, p.baseURL)
	if err != nil {
		return err
	}
	p.client = openai.NewClient(opts...)
	p.defaultModel = firstNonEmpty(config["default_model"], p.model, "gpt-4o-mini")
	return nil
}

func (p *Provider) GetName() string {
	return firstNonEmpty(p.name, "openai")
}

func (p *Provider) GetSupportedModels() []string {
	if len(p.models) > 0 {
		return p.models
	}
	return []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"}
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, convertError(p.GetName(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	return &llm.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   int(resp.Usage.TotalTokens),
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}

// ImageProvider implements llm.ImageProvider with the images API.
// The reply is re-encoded as {"data":[{"b64_json":...}]}.
type ImageProvider struct {
	client       openai.Client
	defaultModel string
}

func (p *ImageProvider) Initialize(config map[string]string) error {
	opts, err := clientOptions(config, "")
	if err != nil {
		return err
	}
	p.client = openai.NewClient(opts...)
	p.defaultModel = config["default_model"]
	if p.defaultModel == "" {
		p.defaultModel = string(openai.ImageModelDallE3)
	}
	return nil
}

func (p *ImageProvider) GetName() string {
	return "openai images"
}

type dataList struct {
	Data []dataItem `json:"data"`
}

type dataItem struct {
	B64JSON string `json:"b64_json,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (p *ImageProvider) GenerateImages(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(model),
		N:              openai.Int(int64(count)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return nil, convertError(p.GetName(), err)
	}

	out := dataList{Data: make([]dataItem, 0, len(resp.Data))}
	for _, img := range resp.Data {
		out.Data = append(out.Data, dataItem{B64JSON: img.B64JSON, URL: img.URL})
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &llm.ImageResponse{Provider: p.GetName(), Model: model, Body: body}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
