// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownProvider = errors.New("unknown AI provider")

	// ErrRateLimited marks a quota or rate-limit rejection from a provider.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrContentBlocked marks a reply withheld by the provider's own safety filters.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")
)

// CompletionRequest is a provider-neutral text generation request
type CompletionRequest struct {
	Prompt       string                 `json:"prompt"`
	SystemPrompt string                 `json:"system_prompt,omitempty"`
	MaxTokens    int                    `json:"max_tokens,omitempty"`
	Temperature  float32                `json:"temperature,omitempty"`
	Model        string                 `json:"model,omitempty"`
	ExtraParams  map[string]interface{} `json:"extra_params,omitempty"`
}

// CompletionResponse is a provider-neutral text generation response
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider is the text-generation capability
type Provider interface {
	// Initialize configures the provider; api_key and default_model are the common keys
	Initialize(config map[string]string) error

	GetName() string

	GetSupportedModels() []string

	// CompleteText runs one single-turn generation
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// APIError is a non-2xx reply from a provider's HTTP API
type APIError struct {
	Provider   string
	StatusCode int
	Status     string // provider status string, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s API error (%d %s): %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimited reports whether the reply is a quota rejection
func (e *APIError) RateLimited() bool {
	return e.StatusCode == 429 || strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED")
}

// Is lets errors.Is(err, ErrRateLimited) match rate-limit replies
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.RateLimited()
}

// IsRateLimited classifies err as a rate-limit signal. Structured signals are
// checked first; a "429" inside the message text is still accepted for
// providers that only report it there.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	return strings.Contains(err.Error(), "429")
}

// ProviderFactory builds an uninitialized text provider
type ProviderFactory func() Provider

var (
	registryMu sync.RWMutex
	providers  = make(map[string]ProviderFactory)
)

// Register adds a text provider factory
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = factory
}

// GetProvider creates and initializes the named text provider
func GetProvider(name string, config map[string]string) (Provider, error) {
	registryMu.RLock()
	factory, exists := providers[name]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders returns the registered text provider names, sorted
func ListProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
