// internal/llm/providers/mock/mock.go
package mock

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/models"
)

func init() {
	llm.Register("mock", func() llm.Provider { return &Provider{} })
	llm.RegisterImage("mock", func() llm.ImageProvider { return &ImageProvider{size: 256} })
}

// gloomyWords trip the offline moderator
var gloomyWords = []string{
	"blood", "dead", "death", "fight", "gun", "kill", "monster",
	"sad", "scary", "war", "weapon",
}

// Provider is an offline moderator for demo mode. It approves anything
// without a gloomy word in it.
type Provider struct{}

func (p *Provider) Initialize(config map[string]string) error { return nil }

func (p *Provider) GetName() string { return "mock" }

func (p *Provider) GetSupportedModels() []string { return []string{"mock"} }

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := models.ApprovalMarker
	lower := strings.ToLower(req.Prompt)
	for _, word := range gloomyWords {
		if strings.Contains(lower, word) {
			text = models.RedirectMessage
			break
		}
	}

	return &llm.CompletionResponse{
		Text:         text,
		FinishReason: "STOP",
		ModelName:    "mock",
		ProviderName: p.GetName(),
	}, nil
}

// ImageProvider paints a pastel stripe pattern seeded by the prompt and
// replies in the inline (generateContent) shape.
type ImageProvider struct {
	size int
}

func (p *ImageProvider) Initialize(config map[string]string) error { return nil }

func (p *ImageProvider) GetName() string { return "mock" }

func (p *ImageProvider) GenerateImages(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := paint(req.Prompt, p.size)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"parts": []map[string]interface{}{{
					"inlineData": map[string]string{
						"mimeType": "image/png",
						"data":     base64.StdEncoding.EncodeToString(data),
					},
				}},
			},
		}},
	})
	if err != nil {
		return nil, err
	}
	return &llm.ImageResponse{Provider: p.GetName(), Model: "mock", Body: body}, nil
}

var palette = []color.RGBA{
	{0xfd, 0xf2, 0xf8, 0xff},
	{0xfb, 0xcf, 0xe8, 0xff},
	{0xdd, 0xd6, 0xfe, 0xff},
	{0xbf, 0xdb, 0xfe, 0xff},
	{0xbb, 0xf7, 0xd0, 0xff},
	{0xfe, 0xf0, 0x8a, 0xff},
}

func paint(prompt string, size int) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	seed := int(h.Sum32() % uint32(len(palette)))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	band := size / 8
	if band == 0 {
		band = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, palette[(seed+(x+y)/band)%len(palette)])
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
