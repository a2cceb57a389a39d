// internal/llm/providers/google/imagen.go
package google

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"google.golang.org/genai"

	"github.com/Corphon/MagicStudio/internal/llm"
)

func init() {
	llm.RegisterImage("imagen", func() llm.ImageProvider { return &ImagenProvider{} })
	llm.RegisterImage("gemini-image", func() llm.ImageProvider { return &GeminiImageProvider{} })
}

// ImagenProvider generates with an Imagen model. The reply is re-encoded as
// {"predictions":[{"bytesBase64Encoded":...}]}.
type ImagenProvider struct {
	client       *genai.Client
	defaultModel string
	aspectRatio  string
}

func (p *ImagenProvider) Initialize(config map[string]string) error {
	client, err := newClient(p.GetName(), config)
	if err != nil {
		return err
	}
	p.client = client
	p.defaultModel = config["default_model"]
	if p.defaultModel == "" {
		p.defaultModel = "imagen-3.0-generate-001"
	}
	p.aspectRatio = config["aspect_ratio"]
	return nil
}

func (p *ImagenProvider) GetName() string {
	return "google imagen"
}

type predictionList struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
	RaiFilteredReason  string `json:"raiFilteredReason,omitempty"`
}

func (p *ImagenProvider) GenerateImages(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}

	cfg := &genai.GenerateImagesConfig{
		NumberOfImages:   int32(count),
		PersonGeneration: genai.PersonGenerationDontAllow,
	}
	if ratio := firstNonEmpty(req.AspectRatio, p.aspectRatio); ratio != "" {
		cfg.AspectRatio = ratio
	}

	resp, err := p.client.Models.GenerateImages(ctx, model, req.Prompt, cfg)
	if err != nil {
		return nil, convertError(p.GetName(), err)
	}

	out := predictionList{Predictions: make([]prediction, 0, len(resp.GeneratedImages))}
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		pred := prediction{RaiFilteredReason: generated.RAIFilteredReason}
		if img := generated.Image; img != nil && len(img.ImageBytes) > 0 {
			pred.BytesBase64Encoded = base64.StdEncoding.EncodeToString(img.ImageBytes)
			pred.MimeType = img.MIMEType
		}
		out.Predictions = append(out.Predictions, pred)
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &llm.ImageResponse{Provider: p.GetName(), Model: model, Body: body}, nil
}

// GeminiImageProvider asks a Gemini image model for an IMAGE modality reply.
// The reply is re-encoded as candidates[].content.parts[].inlineData.
type GeminiImageProvider struct {
	client       *genai.Client
	defaultModel string
}

func (p *GeminiImageProvider) Initialize(config map[string]string) error {
	client, err := newClient(p.GetName(), config)
	if err != nil {
		return err
	}
	p.client = client
	p.defaultModel = config["default_model"]
	if p.defaultModel == "" {
		p.defaultModel = "gemini-2.0-flash-preview-image-generation"
	}
	return nil
}

func (p *GeminiImageProvider) GetName() string {
	return "google gemini image"
}

type candidateList struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content candidateContent `json:"content"`
}

type candidateContent struct {
	Parts []inlinePart `json:"parts"`
}

type inlinePart struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (p *GeminiImageProvider) GenerateImages(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		CandidateCount:     1,
		SafetySettings:     SafetySettings,
	})
	if err != nil {
		return nil, convertError(p.GetName(), err)
	}

	var out candidateList
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var c candidate
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			c.Content.Parts = append(c.Content.Parts, inlinePart{InlineData: &inlineData{
				MimeType: part.InlineData.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
			}})
		}
		out.Candidates = append(out.Candidates, c)
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
