package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Blob is inline binary prompt data such as an image.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one element of a prompt: text or inline data.
type Part struct {
	Text       string
	InlineData *Blob
}

type Prompt []Part

func TextPrompt(text string) Prompt {
	return Prompt{{Text: text}}
}

// IsEmpty reports whether no part carries non-whitespace text or non-empty data.
func (p Prompt) IsEmpty() bool {
	for _, part := range p {
		if strings.TrimSpace(part.Text) != "" {
			return false
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return false
		}
	}
	return true
}

// ModelBackend is one entry of the ordered fallback list.
type ModelBackend struct {
	Provider        string
	Model           string
	MaxOutputTokens int32
	Temperature     float32
}

func (b ModelBackend) Name() string {
	return b.Provider + ":" + b.Model
}

type GenerationParams struct {
	MaxOutputTokens int32
	Temperature     float32
}

// Generator is a provider driver able to call any model it hosts.
type Generator interface {
	Provider() string
	Generate(ctx context.Context, model string, prompt Prompt, params GenerationParams) (string, error)
}

type ResultPart struct {
	Text string `json:"text"`
}

type ResultContent struct {
	Parts []ResultPart `json:"parts"`
}

type Candidate struct {
	Content ResultContent `json:"content"`
}

// InvocationResult is the normalized output of one successful backend call.
type InvocationResult struct {
	success  bool
	text     string
	backend  string
	attempts int
}

func newInvocationResult(backend, text string, attempts int) *InvocationResult {
	return &InvocationResult{success: true, text: text, backend: backend, attempts: attempts}
}

func (r *InvocationResult) Success() bool { return r.success }

func (r *InvocationResult) Text() string { return r.text }

// Candidates exposes the text in the multi-candidate shape some callers expect.
func (r *InvocationResult) Candidates() []Candidate {
	return []Candidate{{Content: ResultContent{Parts: []ResultPart{{Text: r.text}}}}}
}

func (r *InvocationResult) Backend() string { return r.backend }

// Attempts is the number of calls made across all backends for this result.
func (r *InvocationResult) Attempts() int { return r.attempts }

type InvokeOptions struct {
	// Backends overrides the configured fallback list when non-empty.
	Backends        []ModelBackend
	MaxOutputTokens int32
	Temperature     *float32
}

type InvocationClient interface {
	Invoke(ctx context.Context, prompt Prompt, opts InvokeOptions) (*InvocationResult, error)
	Backends() []ModelBackend
}

type invocationClient struct {
	generators map[string]Generator
	backends   []ModelBackend
	retry      RetryPolicy
	logger     *log.Entry
}

type InvokerOption func(*invocationClient)

func WithRetryPolicy(p RetryPolicy) InvokerOption {
	return func(c *invocationClient) {
		c.retry = p
	}
}

func WithLogger(logger *log.Logger) InvokerOption {
	return func(c *invocationClient) {
		c.logger = logger.WithField("component", "invoker")
	}
}

func NewInvocationClient(backends []ModelBackend, generators []Generator, opts ...InvokerOption) (InvocationClient, error) {
	if len(backends) == 0 {
		return nil, errors.New("at least one model backend is required")
	}

	c := &invocationClient{
		generators: make(map[string]Generator, len(generators)),
		backends:   append([]ModelBackend(nil), backends...),
		retry:      DefaultRetryPolicy(),
		logger:     log.WithField("component", "invoker"),
	}
	for _, g := range generators {
		c.generators[g.Provider()] = g
	}
	for _, b := range c.backends {
		if _, ok := c.generators[b.Provider]; !ok {
			return nil, fmt.Errorf("no driver registered for provider %q (backend %s)", b.Provider, b.Name())
		}
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *invocationClient) Backends() []ModelBackend {
	return append([]ModelBackend(nil), c.backends...)
}

// Invoke implements InvocationClient.
func (c *invocationClient) Invoke(ctx context.Context, prompt Prompt, opts InvokeOptions) (*InvocationResult, error) {
	if prompt.IsEmpty() {
		c.logger.WithField("parts", len(prompt)).Error("❌ Prompt is empty or invalid, refusing to call any backend")
		return nil, errors.Wrap(ErrValidation, "prompt is empty or invalid: at least one content part is required")
	}

	backends := c.backends
	if len(opts.Backends) > 0 {
		backends = opts.Backends
	}

	var lastErr error
	totalAttempts := 0
	for _, backend := range backends {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "invocation cancelled")
		}

		logger := c.logger.WithFields(log.Fields{
			"backend":  backend.Name(),
			"provider": backend.Provider,
		})

		generator, ok := c.generators[backend.Provider]
		if !ok {
			lastErr = &UpstreamError{Backend: backend.Name(), Class: ClassInvalidRequest, Err: errors.New("no driver registered")}
			logger.Warn("⚠️ Skipping backend without a driver")
			continue
		}

		params := GenerationParams{MaxOutputTokens: backend.MaxOutputTokens, Temperature: backend.Temperature}
		if opts.MaxOutputTokens > 0 {
			params.MaxOutputTokens = opts.MaxOutputTokens
		}
		if opts.Temperature != nil {
			params.Temperature = *opts.Temperature
		}

		policy := c.retry
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.WithFields(log.Fields{
				"attempt":     attempt,
				"delay":       delay.String(),
				"error_class": ClassOf(err),
			}).Warnf("⚠️ Retry %d/%d after %s", attempt, policy.MaxAttempts, delay)
		}

		logger.Info("🔷 Trying model backend")
		text, attempts, err := Retry(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
			return generator.Generate(ctx, backend.Model, prompt, params)
		})
		totalAttempts += attempts
		if err == nil {
			logger.WithField("attempt", attempts).Info("✅ Generated content")
			return newInvocationResult(backend.Name(), text, totalAttempts), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.WithError(err).Warn("🛑 Invocation abandoned, request context is done")
			return nil, errors.Wrap(ctxErr, "invocation cancelled")
		}

		logger.WithFields(log.Fields{
			"attempt":     attempts,
			"error_class": ClassOf(err),
		}).WithError(err).Warn("❌ Model backend failed")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no model backends configured")
	}
	c.logger.WithField("attempts", totalAttempts).WithError(lastErr).Error("❌ All model backends failed")
	return nil, &ExhaustedError{Attempts: totalAttempts, Last: lastErr}
}
