package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/pkg/circuitbreaker"
	"github.com/hr-agent/backend/pkg/logger"
	"github.com/hr-agent/backend/pkg/lru"
	"github.com/hr-agent/backend/pkg/retry"
)

// ErrServiceFailure marks any text-generation failure (unreachable service,
// malformed response) so the router can emit its fixed degraded message
// instead of propagating a raw error.
var ErrServiceFailure = errors.New("text generation service failure")

// Client talks to an OpenAI-compatible chat completion endpoint (Groq in
// the default configuration). Every call is bounded by a timeout, retried
// with backoff, and guarded by a circuit breaker.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config

	// translations are memoized on exact input text, bounded so a long
	// session cannot grow the cache without limit.
	translations *lru.Cache
}

type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	Temperature      float32
	MaxTokens        int
	Timeout          time.Duration
	TranslationCache int
}

func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized",
		zap.String("model", cfg.Model),
		zap.String("base_url", clientConfig.BaseURL),
	)

	return &Client{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		timeout:      cfg.Timeout,
		cb:           cb,
		retryConfig:  retryConfig,
		translations: lru.New(cfg.TranslationCache),
	}
}

// Generate runs one chat completion. Implements intent.TextGenerator.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}

	return strings.TrimSpace(content), nil
}

// Translate renders text into the target language. Repeated requests for
// the same text are served from the bounded memo cache.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	key := targetLanguage + "|" + text
	if cached, ok := c.translations.Get(key); ok {
		logger.Debug("Translation cache hit", zap.String("language", targetLanguage))
		return cached, nil
	}

	systemPrompt := fmt.Sprintf("You are a translator. Translate the user's text into %s. Return ONLY the translated text, no explanation.", languageName(targetLanguage))

	translated, err := c.Generate(ctx, systemPrompt, text)
	if err != nil {
		return "", err
	}

	c.translations.Put(key, translated)
	return translated, nil
}

// Define explains an HR concept in plain business language.
func (c *Client) Define(ctx context.Context, concept string) (string, error) {
	systemPrompt := `You are an HR analytics assistant.
Explain the HR concept in the user's question clearly, in simple business language, in a few sentences.`

	return c.Generate(ctx, systemPrompt, concept)
}

// Fallback answers a query that resolved to no deterministic metric.
func (c *Client) Fallback(ctx context.Context, query string) (string, error) {
	systemPrompt := `You are an HR analytics assistant.
Answer the user's HR question briefly and analytically. Stay within the HR / workforce analytics domain.`

	return c.Generate(ctx, systemPrompt, query)
}

func languageName(code string) string {
	names := map[string]string{
		"en": "English",
		"de": "German",
		"fr": "French",
		"es": "Spanish",
		"it": "Italian",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
