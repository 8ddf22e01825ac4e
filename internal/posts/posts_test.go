package posts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postcraft/internal/events"
	"postcraft/internal/llm"
)

type fakeLLM struct {
	resp     llm.Response
	err      error
	block    bool
	messages []llm.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	f.messages = messages
	if f.block {
		<-ctx.Done()
		return llm.Response{}, ctx.Err()
	}
	return f.resp, f.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]events.Event{{Text: "Launched v2"}, {Text: "Fixed a bug"}})

	require.True(t, strings.HasPrefix(prompt, "Write three engaging social media posts for LinkedIn, Facebook, and Twitter."))
	require.True(t, strings.HasSuffix(prompt, "using these events: Launched v2, Fixed a bug"))
}

func TestBuildPromptKeepsOrderAndDuplicates(t *testing.T) {
	prompt := BuildPrompt([]events.Event{{Text: "b"}, {Text: "a"}, {Text: "b"}})
	require.True(t, strings.HasSuffix(prompt, ": b, a, b"))
}

func TestGenerate(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{Content: "1. LinkedIn ...", Model: "m"}}
	g := NewGenerator(client, 0)

	out, err := g.Generate(t.Context(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "1. LinkedIn ...", out)
	require.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "prompt"}}, client.messages)
}

func TestGenerateEmptyContentYieldsPlaceholder(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, 0)

	out, err := g.Generate(t.Context(), "prompt")
	require.NoError(t, err)
	require.Equal(t, Placeholder, out)
}

func TestGenerateError(t *testing.T) {
	boom := errors.New("unavailable")
	g := NewGenerator(&fakeLLM{err: boom}, 0)

	_, err := g.Generate(t.Context(), "prompt")
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.ErrorIs(t, err, boom)
}

func TestGenerateTimeout(t *testing.T) {
	g := NewGenerator(&fakeLLM{block: true}, 20*time.Millisecond)

	_, err := g.Generate(t.Context(), "prompt")
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
