package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/chimera/llm"
)

// MapHTTPError 把上游 HTTP 状态映射为类型化错误。
// 这是所有网络适配器共用的第一层分类；文本启发式见 ClassifyErrorText。
func MapHTTPError(status int, msg, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusTooManyRequests:
		return &llm.Error{Code: llm.ErrRateLimited, Message: msg, HTTPStatus: status, Provider: provider}
	default:
		if code := ClassifyErrorText(msg); code == llm.ErrRateLimited {
			return &llm.Error{Code: code, Message: msg, HTTPStatus: status, Provider: provider}
		}
		return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status, Provider: provider}
	}
}

// ClassifyErrorText 对只有错误文本可用的路径做启发式分类：
// 出现 429 / quota / rate 视为限流。上游措辞变化会让它失灵，
// 因此有结构化状态码时优先走 MapHTTPError。
func ClassifyErrorText(msg string) llm.ErrorCode {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate") {
		return llm.ErrRateLimited
	}
	return llm.ErrUpstreamError
}

// ReadErrorMessage 读取响应体中的错误消息。
// 先按通用 JSON 错误结构解析，失败回退到原始文本。
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}
	return string(data)
}

// MissingCredentialEnvelope 构造缺失凭据的信封。
// 约定 reply 含 "No API key"，上层与测试都依赖这一措辞。
func MissingCredentialEnvelope(display, tag, model string) *llm.Response {
	return llm.Failure(tag, model,
		fmt.Sprintf("[%s %s] No API key provided", display, model),
		"No API key")
}

// ErrorEnvelope 把类型化错误渲染为统一信封。
// 每种分类给出可区分的人类可读 reply，原始错误文本进 Error 字段。
func ErrorEnvelope(display, tag, model string, lerr *llm.Error) *llm.Response {
	var reply string
	switch lerr.Code {
	case llm.ErrMissingCredential:
		return MissingCredentialEnvelope(display, tag, model)
	case llm.ErrUnsupportedCapability:
		reply = fmt.Sprintf("[%s %s] Client capability unavailable: %s", display, model, lerr.Message)
	case llm.ErrUnauthorized:
		reply = fmt.Sprintf("[%s %s] Authentication failed: %s", display, model, lerr.Message)
	case llm.ErrRateLimited:
		reply = fmt.Sprintf("[%s %s] Rate limit exceeded. Please wait and try again, or check your API quota.", display, model)
	case llm.ErrContentBlocked:
		reply = fmt.Sprintf("[%s %s] Content was blocked by safety filters", display, model)
	default:
		reply = fmt.Sprintf("[%s %s] Error: %s", display, model, lerr.Message)
	}
	return llm.Failure(tag, model, reply, lerr.Message)
}

// BuildChatMessages 把统一请求摊平成 role/content 消息序列，
// 供所有支持 system 角色的 API 使用：
// system（系统提示词+记忆块）→ 时间顺序历史 → 当前用户消息。
// Context 为空时退化为单条 user 消息（旧入口的完整提示词）。
func BuildChatMessages(req *llm.Request) []llm.Message {
	if req.Context == nil {
		return []llm.Message{{Role: llm.RoleUser, Content: req.Prompt}}
	}
	pctx := req.Context
	msgs := make([]llm.Message, 0, len(pctx.History)+2)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleSystem,
		Content: pctx.SystemPrompt + pctx.MemoryBlock,
	})
	msgs = append(msgs, pctx.History...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: pctx.UserMessage})
	return msgs
}

// OpenAI 兼容 API 的线格式，被 openai/deepseek/groq 共用。

type OpenAICompatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAICompatRequest struct {
	Model       string                `json:"model"`
	Messages    []OpenAICompatMessage `json:"messages"`
	Temperature float32               `json:"temperature,omitempty"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
}

type OpenAICompatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type OpenAICompatChoice struct {
	Index        int                 `json:"index"`
	FinishReason string              `json:"finish_reason"`
	Message      OpenAICompatMessage `json:"message"`
}

type OpenAICompatResponse struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []OpenAICompatChoice `json:"choices"`
	Usage   *OpenAICompatUsage   `json:"usage,omitempty"`
}

// ToCompatMessages 转换为 OpenAI 兼容消息格式。
func ToCompatMessages(msgs []llm.Message) []OpenAICompatMessage {
	out := make([]OpenAICompatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, OpenAICompatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
