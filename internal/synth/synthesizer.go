// Package synth turns trip parameters and research into itinerary text using
// an OpenAI-compatible chat completion endpoint.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/metrics"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000

	// SourcesHeading separates generated text from research citations.
	SourcesHeading = "\n\n---\n\n## 📚 Sources\n\n"
)

// Options configures a Synthesizer.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Synthesizer calls the completion provider once per itinerary.
type Synthesizer struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
	log         zerolog.Logger
}

// New builds a Synthesizer; zero options take the Groq defaults and a 30s timeout.
func New(opts Options) *Synthesizer {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout)

	return &Synthesizer{
		client:      c,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		log:         opts.Logger,
	}
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

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Synthesize returns the generated itinerary, with the research citations
// appended under a Sources heading when there are any. Failures are *Error.
func (s *Synthesizer) Synthesize(ctx context.Context, trip model.TripRequest, research model.ResearchResult, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", fmt.Errorf("completion provider: %w", model.ErrMissingCredential)
	}

	body := chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(trip, research.Text)}},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}

	started := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetBody(&body).
		Post("/chat/completions")
	metrics.ProviderLatency.WithLabelValues("completion").Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.Syntheses.WithLabelValues("transport_error").Inc()
		return "", transportError(err)
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		metrics.Syntheses.WithLabelValues("transport_error").Inc()
		return "", transportError(fmt.Errorf("decode completion response (status %d): %w", resp.StatusCode(), err))
	}

	if len(cr.Choices) == 0 {
		msg := ""
		if cr.Error != nil {
			msg = cr.Error.Message
		}
		s.log.Warn().Int("status", resp.StatusCode()).Str("provider_error", msg).Msg("completion provider returned no choices")
		metrics.Syntheses.WithLabelValues("provider_error").Inc()
		return "", providerError(msg)
	}

	itinerary := cr.Choices[0].Message.Content
	if len(research.Citations) > 0 {
		itinerary += SourcesHeading + strings.Join(research.Citations, "\n")
	}
	metrics.Syntheses.WithLabelValues("ok").Inc()
	return itinerary, nil
}
