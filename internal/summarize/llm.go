package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// LLMClient defines the interface for LLM operations
type LLMClient interface {
	// GenerateText generates text from a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// LLMSummarizer summarizes articles by prompting a language model.
type LLMSummarizer struct {
	client  LLMClient
	timeout time.Duration
}

// NewLLMSummarizer creates an LLMSummarizer. A zero timeout means no per-call limit.
func NewLLMSummarizer(client LLMClient, timeout time.Duration) *LLMSummarizer {
	return &LLMSummarizer{client: client, timeout: timeout}
}

// Summarize implements Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, article core.Article, opts Options) (Result, error) {
	if strings.TrimSpace(article.Abstract) == "" {
		return Result{}, failed(article, errors.New("article has no abstract to summarize"))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.client.GenerateText(ctx, BuildArticlePrompt(article, opts))
	if err != nil {
		return Result{}, failed(article, err)
	}

	summary, why, findings := ParseArticleResponse(response)
	if summary == "" {
		return Result{}, failed(article, errors.New("model response has no SUMMARY section"))
	}

	return Result{
		Summary:        summary,
		WhyThisMatters: why,
		KeyFindings:    findings,
		ReadingTime:    ReadingTime(article, summary),
	}, nil
}

// GeminiClient is an LLMClient backed by the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini client for model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &core.ConfigurationError{Field: "summarizer.api_key", Message: "gemini API key is required"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model, temperature: 0.3}, nil
}

// GenerateText implements LLMClient.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	temp := c.temperature
	config := &genai.GenerateContentConfig{Temperature: &temp}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from LLM")
	}
	return text, nil
}
