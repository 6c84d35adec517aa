package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	chatCompletionsURL = "https://api.openai.com/v1/chat/completions"
	imageGenerationURL = "https://api.openai.com/v1/images/generations"
	transcriptionURL   = "https://api.openai.com/v1/audio/transcriptions"

	chatRequestTimeout  = 90 * time.Second
	imageRequestTimeout = 60 * time.Second
	audioRequestTimeout = 60 * time.Second

	transcriptionModel = "whisper-1"
	imageModel         = "dall-e-3"
)

// Client calls the OpenAI HTTP API for meal plan generation, dish
// images and voice transcription
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates an OpenAI API client. An empty apiKey produces a
// client whose Enabled method reports false.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: chatRequestTimeout},
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChatJSON sends a chat completion request constrained to JSON output
// and returns the raw content of the first choice
func (c *Client) ChatJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, chatRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", chatCompletionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("chat completion error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

// GenerateImage requests a single image for the prompt and returns its
// hosted URL
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := imageRequest{
		Model:  imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode image request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, imageRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", imageGenerationURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	var result imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode image response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("image generation error: %s", result.Error.Message)
	}
	if len(result.Data) == 0 {
		return "", fmt.Errorf("image generation returned no images")
	}

	return result.Data[0].URL, nil
}

type transcriptionResponse struct {
	Text  string    `json:"text"`
	Error *apiError `json:"error"`
}

// Transcribe uploads an audio recording and returns its text
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to copy audio data: %w", err)
	}
	if err := writer.WriteField("model", transcriptionModel); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, audioRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", transcriptionURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("transcription error: %s", result.Error.Message)
	}

	return strings.TrimSpace(result.Text), nil
}
