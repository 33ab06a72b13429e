package echo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/chimera/llm"
)

func TestCallWithoutContext(t *testing.T) {
	p := New(nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "echo", Prompt: "hello world"})

	require.NotNil(t, resp)
	assert.Equal(t, llm.StatusSuccess, resp.Status)
	assert.Equal(t, llm.ProviderEcho, resp.Provider)
	assert.Contains(t, resp.Reply, "[Echo Mode - echo]")
	assert.Contains(t, resp.Reply, "Your message: hello world")
	assert.NotContains(t, resp.Reply, "Context received")
	// token 数取词数
	assert.Equal(t, 2, resp.Tokens)
	assert.Empty(t, resp.Error)
}

func TestCallWithContext(t *testing.T) {
	p := New(nil)
	resp := p.Call(context.Background(), &llm.Request{
		Model: "mystery-9000",
		Context: &llm.ConversationContext{
			SystemPrompt: llm.SystemPrompt,
			History:      []llm.Message{{Role: llm.RoleUser, Content: "earlier"}},
			UserMessage:  "current question",
		},
	})

	assert.Equal(t, llm.StatusSuccess, resp.Status)
	assert.Contains(t, resp.Reply, "Context received (")
	assert.Contains(t, resp.Reply, "Your message: current question")
	assert.Contains(t, resp.Reply, "mystery-9000")
	assert.Positive(t, resp.Tokens)
}

func TestCallWithPreJoinedPrompt(t *testing.T) {
	p := New(nil)
	resp := p.Call(context.Background(), &llm.Request{
		Model:       "echo",
		Prompt:      "prior context here\n\nUser: the actual ask",
		UserMessage: "the actual ask",
	})

	assert.Contains(t, resp.Reply, "Context received (18 chars)")
	assert.Contains(t, resp.Reply, "Your message: the actual ask")
}

func TestCallMessageContainingUserMarker(t *testing.T) {
	p := New(nil)
	msg := "Tell me about the User: header in HTTP"
	resp := p.Call(context.Background(), &llm.Request{Model: "echo", Prompt: msg, UserMessage: msg})

	// 消息里的 "User:" 不是分隔符，必须完整回显
	assert.Contains(t, resp.Reply, "Your message: "+msg)
	assert.NotContains(t, resp.Reply, "Context received")
}

func TestCallNeverFails(t *testing.T) {
	p := New(nil)
	for _, prompt := range []string{"", "User:", strings.Repeat("x ", 1000)} {
		resp := p.Call(context.Background(), &llm.Request{Model: "echo", Prompt: prompt})
		require.NotNil(t, resp, prompt)
		assert.Equal(t, llm.StatusSuccess, resp.Status, prompt)
	}
}
