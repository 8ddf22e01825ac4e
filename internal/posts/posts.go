// Package posts turns a day's events into social media posts.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"postcraft/internal/events"
	"postcraft/internal/llm"
	"postcraft/internal/logging"
)

const (
	Placeholder = "Couldn't generate posts."

	promptTemplate = "Write three engaging social media posts for LinkedIn, Facebook, and Twitter. " +
		"Use simple and natural language. Focus on engaging the respective platform's audience. " +
		"Don't mention the time explicitly, just craft impactful and creative posts using these events: "
	eventSeparator = ", "
)

var ErrGenerationFailed = errors.New("generation failed")

// BuildPrompt embeds the event texts, in order, in the fixed instruction.
func BuildPrompt(evs []events.Event) string {
	texts := make([]string, 0, len(evs))
	for _, ev := range evs {
		texts = append(texts, ev.Text)
	}
	return promptTemplate + strings.Join(texts, eventSeparator)
}

type Generator struct {
	client  llm.Client
	timeout time.Duration
	tracer  trace.Tracer
}

// NewGenerator wraps client. A zero timeout leaves the call unbounded.
func NewGenerator(client llm.Client, timeout time.Duration) *Generator {
	return &Generator{
		client:  client,
		timeout: timeout,
		tracer:  otel.Tracer("postcraft/posts"),
	}
}

// Generate sends prompt as the only user turn. An answer without text
// yields Placeholder rather than an error.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(ctx, "Posts.Generate")
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Generate(ctx, llm.UserPrompt(prompt))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	span.SetAttributes(
		attribute.String("llm.model", resp.Model),
		attribute.Int("llm.total_tokens", resp.TotalTokens),
	)
	logging.FromContext(ctx).DebugContext(
		ctx,
		"Generated posts",
		"model", resp.Model,
		"promptTokens", resp.PromptTokens,
		"completionTokens", resp.CompletionTokens,
		"totalTokens", resp.TotalTokens,
	)

	if resp.Content == "" {
		return Placeholder, nil
	}
	return resp.Content, nil
}
