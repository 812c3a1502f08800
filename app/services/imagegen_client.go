// Package services provides external service integrations and technical concerns like image generation and storage
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/juicebox-at/limited-builder/config"
)

// ImageGenService calls the upstream chat-completions API that renders
// promotional images and extracts the image from its response.
type ImageGenService interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ErrNoImageInResponse is returned when the upstream answered but no image
// could be extracted from any known response shape.
var ErrNoImageInResponse = fmt.Errorf("no image found in generation response")

// ImageGenServiceImpl implements ImageGenService
type ImageGenServiceImpl struct {
	config *config.ImageGenConfig
	client *http.Client
}

// NewImageGenService creates a new image generation client
func NewImageGenService(cfg *config.ImageGenConfig) ImageGenService {
	return &ImageGenServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// chatRequest is the upstream chat-completions payload
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is a single element of a multi-part message content
type contentPart struct {
	Type       string           `json:"type,omitempty"`
	Text       string           `json:"text,omitempty"`
	URL        string           `json:"url,omitempty"`
	ImageURL   *imageURLPayload `json:"image_url,omitempty"`
	InlineData *inlineData      `json:"inline_data,omitempty"`
}

type imageURLPayload struct {
	URL string `json:"url"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// chatResponse mirrors the parts of the upstream response we read. The image
// location varies between model versions, so every candidate field is mapped.
type chatResponse struct {
	Choices []struct {
		Message responseMessage `json:"message"`
	} `json:"choices"`
}

type responseMessage struct {
	Images  []responseImage `json:"images"`
	Content json.RawMessage `json:"content"`
}

type responseImage struct {
	URL      string           `json:"url"`
	ImageURL *imageURLPayload `json:"image_url"`
}

// GenerateImage sends the prompt upstream and extracts the resulting image as
// either a direct URL or a data URI.
func (s *ImageGenServiceImpl) GenerateImage(ctx context.Context, prompt string) (string, error) {
	content := s.buildContent(prompt)

	body, err := json.Marshal(chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := s.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("HTTP-Referer", s.config.Referer)
	req.Header.Set("X-Title", s.config.Title)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generation request returned %d: %s", resp.StatusCode, string(detail))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrNoImageInResponse
	}

	return extractImage(&parsed.Choices[0].Message)
}

// buildContent returns a plain string prompt, or a multi-part content when
// reference images are configured.
func (s *ImageGenServiceImpl) buildContent(prompt string) any {
	if len(s.config.ReferenceImages) == 0 {
		return prompt
	}

	parts := []contentPart{{Type: "text", Text: prompt}}
	for _, ref := range s.config.ReferenceImages {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURLPayload{URL: ref},
		})
	}
	return parts
}

// imageExtractor attempts to pull an image out of a response message.
type imageExtractor func(*responseMessage) (string, bool)

// extractors run in order; the first hit wins. The upstream response shape is
// not stable across model releases, hence the chain.
var extractors = []imageExtractor{
	extractFromImagesArray,
	extractFromContentParts,
	extractFromRawDataURI,
}

func extractImage(msg *responseMessage) (string, error) {
	for _, extract := range extractors {
		if url, ok := extract(msg); ok {
			return url, nil
		}
	}
	return "", ErrNoImageInResponse
}

// extractFromImagesArray reads the dedicated images array
func extractFromImagesArray(msg *responseMessage) (string, bool) {
	if len(msg.Images) == 0 {
		return "", false
	}
	img := msg.Images[0]
	if img.ImageURL != nil && img.ImageURL.URL != "" {
		return img.ImageURL.URL, true
	}
	if img.URL != "" {
		return img.URL, true
	}
	return "", false
}

// extractFromContentParts scans a content array for inline data or nested URLs
func extractFromContentParts(msg *responseMessage) (string, bool) {
	var parts []contentPart
	if err := json.Unmarshal(msg.Content, &parts); err != nil {
		return "", false
	}
	for _, part := range parts {
		if part.InlineData != nil && part.InlineData.Data != "" && part.InlineData.MimeType != "" {
			return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), true
		}
		if part.Type == "image_url" && part.ImageURL != nil && part.ImageURL.URL != "" {
			return part.ImageURL.URL, true
		}
		if part.Type == "image" && part.URL != "" {
			return part.URL, true
		}
	}
	return "", false
}

var dataURIPattern = regexp.MustCompile(`data:image/[^;]+;base64,[A-Za-z0-9+/=]+`)

// extractFromRawDataURI scans a plain string content for an embedded data URI
func extractFromRawDataURI(msg *responseMessage) (string, bool) {
	var content string
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return "", false
	}
	if match := dataURIPattern.FindString(content); match != "" {
		return match, true
	}
	return "", false
}

// MockImageGenService implements ImageGenService for testing
type MockImageGenService struct {
	Result  string
	Err     error
	Prompts []string
}

// GenerateImage records the prompt and returns the configured result
func (m *MockImageGenService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Result, nil
}
