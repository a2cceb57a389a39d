// internal/llm/providers/google/client.go
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/Corphon/MagicStudio/internal/llm"
)

const defaultTimeout = 90 * time.Second

// SafetySettings blocks low-and-above harm on every category the API exposes
var SafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
}

// clientConfig picks the backend. A project id selects Vertex AI, which
// authenticates with application default credentials; otherwise the Gemini
// API is called with the api key.
func clientConfig(name string, config map[string]string) (*genai.ClientConfig, error) {
	timeout := defaultTimeout
	if raw := config["timeout"]; raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	cc := &genai.ClientConfig{
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: config["base_url"]},
	}

	if project := config["project_id"]; project != "" && config["base_url"] == "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = project
		cc.Location = config["region"]
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
		return cc, nil
	}

	apiKey := config["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key not provided", name)
	}
	cc.Backend = genai.BackendGeminiAPI
	cc.APIKey = apiKey
	return cc, nil
}

func newClient(name string, config map[string]string) (*genai.Client, error) {
	cc, err := clientConfig(name, config)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create client: %w", name, err)
	}
	return client, nil
}

// convertError turns genai errors into llm.APIError so rate limits classify uniformly
func convertError(provider string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.APIError{Provider: provider, StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &llm.APIError{Provider: provider, StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("%s: request failed: %w", provider, err)
}
