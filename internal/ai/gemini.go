package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient wraps the generative-language API with a circuit breaker and
// a request-rate limiter. Calls are not retried and carry no timeout of
// their own; a failed call simply surfaces its error to the caller.
type GeminiClient struct {
	client      *genai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// Free-tier RPM with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(10*0.9/60.0), 1)

	return &GeminiClient{
		client:      client,
		model:       model,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}, nil
}

// GenerateText sends one prompt and returns the concatenated text of the
// first candidate.
func (gc *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_text")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", fmt.Errorf("generative API unavailable: %w", err)
		}
		span.SetAttributes(
			attribute.Bool("gemini.error", true),
			attribute.String("gemini.error_message", err.Error()),
		)
		return "", err
	}

	resp := result.(*genai.GenerateContentResponse)
	if resp.UsageMetadata != nil {
		span.SetAttributes(attribute.Int("gemini.total_tokens", int(resp.UsageMetadata.TotalTokenCount)))
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("empty response from generative API")
	}

	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	return text, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

// Close the underlying API client.
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
