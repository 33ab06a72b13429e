package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextFiltersInactiveMemories(t *testing.T) {
	conv := ConversationData{
		ModelID: "gpt-4",
		Memories: []InjectedMemory{
			{Title: "A", Content: "alpha", Active: true},
			{Title: "B", Content: "beta", Active: true},
			{Title: "C", Content: "gamma", Active: false},
		},
	}

	pctx := BuildContext(conv, "hello")
	require.NotNil(t, pctx)
	assert.Equal(t, SystemPrompt, pctx.SystemPrompt)
	assert.Equal(t, "hello", pctx.UserMessage)

	assert.Contains(t, pctx.MemoryBlock, "=== Injected Context ===")
	assert.Contains(t, pctx.MemoryBlock, "[A]\nalpha")
	assert.Contains(t, pctx.MemoryBlock, "[B]\nbeta")
	assert.NotContains(t, pctx.MemoryBlock, "gamma")
	assert.Contains(t, pctx.MemoryBlock, "=== End Context ===")
}

func TestBuildContextNoActiveMemories(t *testing.T) {
	conv := ConversationData{
		Memories: []InjectedMemory{{Title: "C", Content: "gamma", Active: false}},
	}
	pctx := BuildContext(conv, "hi")
	assert.Empty(t, pctx.MemoryBlock)
}

func TestBuildContextBoundsHistory(t *testing.T) {
	var history []Message
	for i := 0; i < 15; i++ {
		history = append(history, Message{Role: RoleUser, Content: fmt.Sprintf("msg-%d", i)})
	}
	pctx := BuildContext(ConversationData{History: history}, "latest")

	require.Len(t, pctx.History, 10)
	// 保留最新 10 条，时间顺序不变
	assert.Equal(t, "msg-5", pctx.History[0].Content)
	assert.Equal(t, "msg-14", pctx.History[9].Content)
	// 当前用户消息不进历史
	for _, m := range pctx.History {
		assert.NotEqual(t, "latest", m.Content)
	}
}

func TestBuildContextCopiesHistory(t *testing.T) {
	history := []Message{{Role: RoleUser, Content: "original"}}
	pctx := BuildContext(ConversationData{History: history}, "x")
	pctx.History[0].Content = "mutated"
	assert.Equal(t, "original", history[0].Content)
}

func TestFlattenPrompt(t *testing.T) {
	pctx := &ConversationContext{
		SystemPrompt: SystemPrompt,
		MemoryBlock:  "\n\n=== Injected Context ===\n\n[Note]\nfact\n\n=== End Context ===\n",
		History: []Message{
			{Role: RoleUser, Content: "q1"},
			{Role: RoleAssistant, Content: "a1"},
		},
		UserMessage: "q2",
	}
	flat := FlattenPrompt(pctx)

	assert.True(t, strings.HasPrefix(flat, SystemPrompt))
	assert.Contains(t, flat, "=== Injected Context ===")
	assert.Contains(t, flat, "=== Conversation History ===")
	assert.Contains(t, flat, "user: q1")
	assert.Contains(t, flat, "assistant: a1")
	assert.True(t, strings.HasSuffix(flat, "User: q2"))
}

func TestFlattenPromptWithoutHistoryOrMemories(t *testing.T) {
	flat := FlattenPrompt(&ConversationContext{
		SystemPrompt: SystemPrompt,
		UserMessage:  "solo",
	})
	assert.NotContains(t, flat, "=== Conversation History ===")
	assert.NotContains(t, flat, "=== Injected Context ===")
	assert.True(t, strings.HasSuffix(flat, "User: solo"))
}

func TestJoinPromptContext(t *testing.T) {
	assert.Equal(t, "bare prompt", JoinPromptContext("", "bare prompt"))
	assert.Equal(t, "some context\n\nUser: ask", JoinPromptContext("some context", "ask"))
}
