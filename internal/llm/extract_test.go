package llm

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestGetExtractor(t *testing.T) {
	assert.Equal(t, []string{"data-list", "inline", "predictions"}, ExtractorNames())

	for _, name := range ExtractorNames() {
		ex, err := GetExtractor(name)
		require.NoError(t, err)
		assert.Equal(t, name, ex.Name())
	}

	_, err := GetExtractor("sketchbook")
	assert.ErrorContains(t, err, "unknown image extractor")
}

func TestInlineExtractor(t *testing.T) {
	ex, _ := GetExtractor("inline")

	t.Run("first inline part wins", func(t *testing.T) {
		body := `{"candidates":[{"content":{"parts":[
			{"text":"here you go"},
			{"inlineData":{"mimeType":"image/png","data":"` + b64(pngHeader) + `"}}
		]}}]}`
		img, err := ex.Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, img.Data)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("text only", func(t *testing.T) {
		_, err := ex.Extract([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ex.Extract([]byte(`<html>`))
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := ex.Extract([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"data":"!!!"}}]}}]}`))
		assert.ErrorIs(t, err, ErrNoImage)
	})
}

func TestPredictionsExtractor(t *testing.T) {
	ex, _ := GetExtractor("predictions")

	t.Run("bytes with sniffed mime type", func(t *testing.T) {
		img, err := ex.Extract([]byte(`{"predictions":[{"bytesBase64Encoded":"` + b64(pngHeader) + `"}]}`))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, img.Data)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("filtered by safety", func(t *testing.T) {
		_, err := ex.Extract([]byte(`{"predictions":[{"raiFilteredReason":"violence"}]}`))
		assert.ErrorIs(t, err, ErrContentBlocked)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ex.Extract([]byte(`{}`))
		assert.ErrorIs(t, err, ErrNoImage)
	})
}

func TestDataListExtractor(t *testing.T) {
	ex, _ := GetExtractor("data-list")

	img, err := ex.Extract([]byte(`{"data":[{"b64_json":"` + b64(pngHeader) + `"}]}`))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)

	_, err = ex.Extract([]byte(`{"data":[{"url":"https://example.com/a.png"}]}`))
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorContains(t, err, "URL")

	_, err = ex.Extract([]byte(`{"data":[]}`))
	assert.ErrorIs(t, err, ErrNoImage)
}
