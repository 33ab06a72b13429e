// Package echo 是无网络的终端兜底适配器：确定性地回显用户输入，
// 并标记组装提示词里是否携带了上下文。未知 provider 的请求
// 最终都落在这里，保证「永不拒绝请求」。
package echo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/llm"
)

const userTurnMarker = "User:"

type Provider struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{logger: logger}
}

func (p *Provider) Name() string { return llm.ProviderEcho }

// Call 不访问网络，永远返回 success。
// 原始用户消息由请求单独携带（UserMessage 或 Context.UserMessage），
// 绝不从拼接后的提示词里反解：消息本身含 "User:" 也能完整回显。
// token 数取完整提示词的词数，便于上层做粗略的体积观测。
func (p *Provider) Call(ctx context.Context, req *llm.Request) *llm.Response {
	fullPrompt := req.Prompt
	original := req.UserMessage
	if req.Context != nil {
		fullPrompt = llm.FlattenPrompt(req.Context)
		original = req.Context.UserMessage
	}
	if original == "" {
		original = fullPrompt
	}

	// 提示词比消息本身长，说明前面拼接了上下文
	hasContext := fullPrompt != original
	contextPart := ""
	if hasContext {
		contextPart = strings.TrimSpace(strings.TrimSuffix(fullPrompt, userTurnMarker+" "+original))
	}

	var reply string
	if hasContext {
		reply = fmt.Sprintf(
			"[Echo Mode - %s]\n\nContext received (%d chars)\n\nYour message: %s\n\nResponse: I received your message with injected context. In production, this would be processed by %s.",
			req.Model, len(contextPart), original, req.Model)
	} else {
		reply = fmt.Sprintf(
			"[Echo Mode - %s]\n\nYour message: %s\n\nResponse: I received your message. In production, this would be processed by %s.",
			req.Model, original, req.Model)
	}

	p.logger.Debug("echo completion",
		zap.String("model", req.Model),
		zap.Bool("context_injected", hasContext),
	)

	return llm.Success(llm.ProviderEcho, req.Model, reply, len(strings.Fields(fullPrompt)))
}

var _ llm.Provider = (*Provider)(nil)
