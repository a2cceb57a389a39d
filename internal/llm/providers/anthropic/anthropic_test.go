package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/MagicStudio/internal/llm"
)

func TestCompleteText(t *testing.T) {
	var got map[string]interface{}
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"APPROVED"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":2}}`)
	}))
	defer srv.Close()

	p, err := llm.GetProvider("anthropic", map[string]string{"api_key": "k", "base_url": srv.URL + "/"})
	require.NoError(t, err)

	resp, err := p.CompleteText(context.Background(), llm.CompletionRequest{
		Prompt:       "Child: a kite",
		SystemPrompt: "be kind",
		MaxTokens:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)

	assert.Equal(t, "k", headers.Get("X-Api-Key"))
	assert.NotEmpty(t, headers.Get("Anthropic-Version"))
	system := got["system"].([]interface{})
	require.Len(t, system, 1)
	assert.Equal(t, "be kind", system[0].(map[string]interface{})["text"])
	assert.Equal(t, float64(100), got["max_tokens"])
}

func TestCompleteText_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	p, err := llm.GetProvider("anthropic", map[string]string{"api_key": "k", "base_url": srv.URL + "/"})
	require.NoError(t, err)

	_, err = p.CompleteText(context.Background(), llm.CompletionRequest{Prompt: "x"})
	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rate_limit_error", apiErr.Status)
	assert.Equal(t, "slow down", apiErr.Message)
	assert.True(t, llm.IsRateLimited(err))
}

func TestInitialize_RequiresKey(t *testing.T) {
	_, err := llm.GetProvider("anthropic", nil)
	assert.Error(t, err)
}
