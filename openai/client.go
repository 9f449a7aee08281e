// Package openai talks to an OpenAI compatible API for chat completions
// and embeddings. Only the endpoints the application needs are covered.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

type Client struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string

	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, chatModel, embeddingModel string) *Client {
	return &Client{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		ChatModel:      chatModel,
		EmbeddingModel: embeddingModel,
		HTTPClient:     &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, prompt string, opts litxplore.GenerateOptions) (string, error) {
	body := chatRequest{
		Model:       c.ChatModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: float64(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	var res chatResponse
	if err := c.post(ctx, "/chat/completions", body, &res); err != nil {
		return "", err
	}

	if len(res.Choices) == 0 {
		return "", errors.New("model returned no choices", errors.BadGateway())
	}
	return res.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body := embeddingRequest{Model: c.EmbeddingModel, Input: texts}

	var res embeddingResponse
	if err := c.post(ctx, "/embeddings", body, &res); err != nil {
		return nil, err
	}

	if len(res.Data) != len(texts) {
		return nil, errors.New(
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(res.Data)),
			errors.BadGateway(),
		)
	}

	// The API is allowed to reorder, the index field is authoritative.
	vectors := make([][]float32, len(texts))
	for _, d := range res.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, errors.New("embedding index out of range", errors.BadGateway())
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.New("could not encode request", errors.WithCause(err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.New("could not create request", errors.WithCause(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.New("language model unreachable", errors.BadGateway(), errors.WithCause(err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.New(
			fmt.Sprintf("language model returned %d: %s", res.StatusCode, payload),
			errors.BadGateway(),
		)
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return errors.New("could not decode response", errors.BadGateway(), errors.WithCause(err))
	}
	return nil
}
