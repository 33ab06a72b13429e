package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt 是整个进程固定的系统提示词，本核心不提供按调用覆盖。
const SystemPrompt = "You are a helpful AI assistant in the Chimera Protocol system."

// historyLimit 限制传给上游的历史条数，用于控制提示词体积。
const historyLimit = 10

// 注入记忆块与用户轮次的分隔符。
const (
	memoryBlockHeader = "\n\n=== Injected Context ===\n"
	memoryBlockFooter = "\n=== End Context ===\n"
	userTurnMarker    = "User:"
)

// BuildContext 为一次调用组装提供者中立的上下文对象。
// 只保留 Active 的注入记忆；历史取最近 historyLimit 条并还原为时间顺序；
// 当前用户消息单独携带，绝不混入 History。
func BuildContext(conv ConversationData, userMessage string) *ConversationContext {
	var memories strings.Builder
	active := 0
	for _, m := range conv.Memories {
		if !m.Active {
			continue
		}
		if active == 0 {
			memories.WriteString(memoryBlockHeader)
		}
		fmt.Fprintf(&memories, "\n[%s]\n%s\n", m.Title, m.Content)
		active++
	}
	if active > 0 {
		memories.WriteString(memoryBlockFooter)
	}

	history := conv.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	bounded := make([]Message, len(history))
	copy(bounded, history)

	return &ConversationContext{
		SystemPrompt: SystemPrompt,
		MemoryBlock:  memories.String(),
		History:      bounded,
		UserMessage:  userMessage,
	}
}

// FlattenPrompt 把上下文折叠成单段提示词，供没有消息列表概念的
// 后端（旧版 Google 接口、echo 模式）使用。
func FlattenPrompt(pctx *ConversationContext) string {
	var b strings.Builder
	b.WriteString(pctx.SystemPrompt)
	if pctx.MemoryBlock != "" {
		b.WriteString("\n")
		b.WriteString(pctx.MemoryBlock)
	}
	if len(pctx.History) > 0 {
		b.WriteString("\n\n=== Conversation History ===\n")
		for _, m := range pctx.History {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}
	fmt.Fprintf(&b, "\n\n%s %s", userTurnMarker, pctx.UserMessage)
	return b.String()
}

// JoinPromptContext 拼接旧入口的裸提示词：有上下文时加 User: 分隔。
func JoinPromptContext(contextText, prompt string) string {
	if contextText == "" {
		return prompt
	}
	return contextText + "\n\n" + userTurnMarker + " " + prompt
}
