package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juicebox-at/limited-builder/config"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (ImageGenService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewImageGenService(&config.ImageGenConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Referer: "https://juicebox.example.com",
		Title:   "JuiceBox Limited Builder",
		Timeout: 5 * time.Second,
	})
	return svc, srv
}

func TestGenerateImage(t *testing.T) {
	t.Run("RequestShape", func(t *testing.T) {
		var gotAuth, gotReferer, gotTitle string
		var gotBody chatRequest

		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotReferer = r.Header.Get("HTTP-Referer")
			gotTitle = r.Header.Get("X-Title")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"images": []map[string]any{{"url": "https://cdn.example.com/img.png"}},
					}},
				},
			})
		})

		url, err := svc.GenerateImage(context.Background(), "a glass bottle")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/img.png", url)

		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "https://juicebox.example.com", gotReferer)
		assert.Equal(t, "JuiceBox Limited Builder", gotTitle)
		assert.Equal(t, "test-model", gotBody.Model)
		require.Len(t, gotBody.Messages, 1)
		assert.Equal(t, "user", gotBody.Messages[0].Role)
		assert.Equal(t, "a glass bottle", gotBody.Messages[0].Content)
	})

	t.Run("ImagesArrayWithNestedURL", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"images": []map[string]any{
							{"image_url": map[string]any{"url": "https://cdn.example.com/nested.png"}},
						},
					}},
				},
			})
		})

		url, err := svc.GenerateImage(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/nested.png", url)
	})

	t.Run("ContentPartsInlineData", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"content": []map[string]any{
							{"type": "text", "text": "here is your image"},
							{"inline_data": map[string]any{"mime_type": "image/png", "data": "aGVsbG8="}},
						},
					}},
				},
			})
		})

		url, err := svc.GenerateImage(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)
	})

	t.Run("RawDataURIInStringContent", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"content": "Here you go: data:image/jpeg;base64,QUJDRA== enjoy!",
					}},
				},
			})
		})

		url, err := svc.GenerateImage(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "data:image/jpeg;base64,QUJDRA==", url)
	})

	t.Run("NoImageAnywhere", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "sorry, no can do"}},
				},
			})
		})

		_, err := svc.GenerateImage(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrNoImageInResponse)
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		})

		_, err := svc.GenerateImage(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrNoImageInResponse)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})

		_, err := svc.GenerateImage(context.Background(), "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestBuildContent(t *testing.T) {
	t.Run("PlainPromptWithoutReferences", func(t *testing.T) {
		svc := &ImageGenServiceImpl{config: &config.ImageGenConfig{}}
		assert.Equal(t, "just text", svc.buildContent("just text"))
	})

	t.Run("MultiPartWithReferences", func(t *testing.T) {
		svc := &ImageGenServiceImpl{config: &config.ImageGenConfig{
			ReferenceImages: []string{"https://cdn.example.com/ref1.png", "https://cdn.example.com/ref2.png"},
		}}

		parts, ok := svc.buildContent("styled prompt").([]contentPart)
		require.True(t, ok)
		require.Len(t, parts, 3)
		assert.Equal(t, "text", parts[0].Type)
		assert.Equal(t, "styled prompt", parts[0].Text)
		assert.Equal(t, "image_url", parts[1].Type)
		assert.Equal(t, "https://cdn.example.com/ref1.png", parts[1].ImageURL.URL)
		assert.Equal(t, "https://cdn.example.com/ref2.png", parts[2].ImageURL.URL)
	})
}
