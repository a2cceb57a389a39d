package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"

	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/models"
)

// pngHeader is enough for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type fakeTextProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.CompletionRequest
}

func (f *fakeTextProvider) Initialize(map[string]string) error { return nil }
func (f *fakeTextProvider) GetName() string                    { return "fake-text" }
func (f *fakeTextProvider) GetSupportedModels() []string       { return []string{"fake"} }

func (f *fakeTextProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.reply, ProviderName: "fake-text"}, nil
}

func (f *fakeTextProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeImageProvider replays errs in order and succeeds once they run out
type fakeImageProvider struct {
	mu       sync.Mutex
	errs     []error
	body     []byte
	requests []llm.ImageRequest
}

func (f *fakeImageProvider) Initialize(map[string]string) error { return nil }
func (f *fakeImageProvider) GetName() string                    { return "fake-image" }

func (f *fakeImageProvider) GenerateImages(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	if n < len(f.errs) && f.errs[n] != nil {
		return nil, f.errs[n]
	}
	body := f.body
	if body == nil {
		body = inlineBody(pngHeader)
	}
	return &llm.ImageResponse{Provider: "fake-image", Body: body}, nil
}

func (f *fakeImageProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func inlineBody(data []byte) []byte {
	body, _ := json.Marshal(map[string]interface{}{
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
	return body
}

// memoryAuditLog is an in-memory storage.AuditLog
type memoryAuditLog struct {
	mu        sync.Mutex
	records   []models.AuditRecord
	appendErr error
	readErr   error
}

func (m *memoryAuditLog) Append(ctx context.Context, rec models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryAuditLog) ReadAll(ctx context.Context) ([]models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]models.AuditRecord{}, m.records...), nil
}

func (m *memoryAuditLog) Close() error { return nil }

func (m *memoryAuditLog) all() []models.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditRecord{}, m.records...)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []models.AttemptEvent
}

func (o *recordingObserver) OnAttemptEvent(event models.AttemptEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) states() []models.AttemptState {
	o.mu.Lock()
	defer o.mu.Unlock()
	states := make([]models.AttemptState, 0, len(o.events))
	for _, e := range o.events {
		states = append(states, e.State)
	}
	return states
}
