// internal/llm/image.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNoImage is returned when a response carries no recognizable image
var ErrNoImage = errors.New("no image found in provider response")

// ImageRequest is a provider-neutral image generation request
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	Count       int    `json:"count"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Model       string `json:"model,omitempty"`
}

// ImageResponse carries the provider's reply body untouched; an
// ImageExtractor turns it into bytes.
type ImageResponse struct {
	Provider string
	Model    string
	Body     []byte
}

// GeneratedImage is a decoded image
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ImageProvider is the image-generation capability
type ImageProvider interface {
	Initialize(config map[string]string) error
	GetName() string
	GenerateImages(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ImageProviderFactory builds an uninitialized image provider
type ImageProviderFactory func() ImageProvider

var imageProviders = make(map[string]ImageProviderFactory)

// RegisterImage adds an image provider factory
func RegisterImage(name string, factory ImageProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	imageProviders[name] = factory
}

// GetImageProvider creates and initializes the named image provider
func GetImageProvider(name string, config map[string]string) (ImageProvider, error) {
	registryMu.RLock()
	factory, exists := imageProviders[name]
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

// ListImageProviders returns the registered image provider names, sorted
func ListImageProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(imageProviders))
	for name := range imageProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
