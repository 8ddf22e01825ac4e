package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-pro"

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiClient struct {
	client *genai.Client
	gen    contentGenerator
	name   string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to init gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	return &GeminiClient{client: client, gen: m, name: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	system, rest := splitSystem(messages)
	gen := c.gen
	if system != "" && c.client != nil {
		// Models are cheap handles; a fresh one keeps the shared model immutable.
		m := c.client.GenerativeModel(c.name)
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
		gen = m
	}

	parts := make([]genai.Part, 0, len(rest))
	for _, m := range rest {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := gen.GenerateContent(ctx, parts...)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content failed: %w", err)
	}

	out := Response{Content: firstText(resp), Model: c.name}
	if resp != nil && resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		out.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// firstText returns the first part of the first candidate when it is text.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	t, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return ""
	}
	return string(t)
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
