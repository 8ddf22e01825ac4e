package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleSystem, Content: "no emojis"},
	})
	require.Equal(t, "be brief\nno emojis", system)
	require.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, rest)
}
