// internal/llm/extract.go
package llm

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// ImageExtractor decodes one response shape into image bytes
type ImageExtractor interface {
	Name() string
	Extract(body []byte) (*GeneratedImage, error)
}

var extractors = map[string]ImageExtractor{
	"inline":      inlineExtractor{},
	"predictions": predictionsExtractor{},
	"data-list":   dataListExtractor{},
}

// GetExtractor returns the extractor registered under name
func GetExtractor(name string) (ImageExtractor, error) {
	ex, ok := extractors[name]
	if !ok {
		return nil, fmt.Errorf("unknown image extractor %q (known: %v)", name, ExtractorNames())
	}
	return ex, nil
}

// ExtractorNames lists the known response shapes
func ExtractorNames() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// inlineExtractor reads candidates[].content.parts[].inlineData (Gemini generateContent)
type inlineExtractor struct{}

func (inlineExtractor) Name() string { return "inline" }

func (inlineExtractor) Extract(body []byte) (*GeneratedImage, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: inline response is not valid JSON: %v", ErrNoImage, err)
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return decodeImage(part.InlineData.Data, part.InlineData.MimeType)
			}
		}
	}
	return nil, fmt.Errorf("%w: no inlineData part", ErrNoImage)
}

// predictionsExtractor reads predictions[].bytesBase64Encoded (Imagen predict)
type predictionsExtractor struct{}

func (predictionsExtractor) Name() string { return "predictions" }

func (predictionsExtractor) Extract(body []byte) (*GeneratedImage, error) {
	var resp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
			RaiFilteredReason  string `json:"raiFilteredReason"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: predictions response is not valid JSON: %v", ErrNoImage, err)
	}

	var filtered string
	for _, p := range resp.Predictions {
		if p.BytesBase64Encoded != "" {
			return decodeImage(p.BytesBase64Encoded, p.MimeType)
		}
		if p.RaiFilteredReason != "" {
			filtered = p.RaiFilteredReason
		}
	}
	if filtered != "" {
		return nil, fmt.Errorf("%w: %s", ErrContentBlocked, filtered)
	}
	return nil, fmt.Errorf("%w: no predictions with image bytes", ErrNoImage)
}

// dataListExtractor reads data[].b64_json (OpenAI images)
type dataListExtractor struct{}

func (dataListExtractor) Name() string { return "data-list" }

func (dataListExtractor) Extract(body []byte) (*GeneratedImage, error) {
	var resp struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: data-list response is not valid JSON: %v", ErrNoImage, err)
	}

	for _, d := range resp.Data {
		if d.B64JSON != "" {
			return decodeImage(d.B64JSON, "")
		}
	}
	if len(resp.Data) > 0 && resp.Data[0].URL != "" {
		return nil, fmt.Errorf("%w: provider returned a URL instead of inline bytes", ErrNoImage)
	}
	return nil, fmt.Errorf("%w: empty data list", ErrNoImage)
}

func decodeImage(encoded, mimeType string) (*GeneratedImage, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %v", ErrNoImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrNoImage)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &GeneratedImage{Data: data, MIMEType: mimeType}, nil
}
