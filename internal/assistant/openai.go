package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pgEdge/pgedge-orderbi/internal/config"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

// ErrNoAnswer is returned when the model response holds no SQL.
var ErrNoAnswer = errors.New("model returned no answer")

// Generator produces SQL for a question.
type Generator interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
}

// OpenAI generates SQL with an OpenAI compatible chat completions API.
type OpenAI struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// NewOpenAI creates a client from the web configuration.
func NewOpenAI(cfg config.WebConfig) *OpenAI {
	return &OpenAI{
		client:      &http.Client{Timeout: 60 * time.Second},
		baseURL:     strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// GenerateSQL asks the model for a query answering question and returns
// it without code fences.
func (o *OpenAI) GenerateSQL(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuery
	}

	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(question)},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	sql := ExtractSQL(content.String())
	if sql == "" {
		return "", ErrNoAnswer
	}

	logging.Debug().
		Str("model", o.model).
		Dur("elapsed", time.Since(start)).
		Int64("tokens", gjson.GetBytes(raw, "usage.total_tokens").Int()).
		Msg("Generated SQL")

	return sql, nil
}
