package llm

import (
	"context"
	"time"
)

// Status 表示一次补全调用的最终状态。
// 所有适配器只区分 success / error 两种结果，不抛出异常。
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 是对话历史中的一条消息。
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// InjectedMemory 是挂载到会话上的记忆片段。
// Active 标记由外部协作方维护，路由核心只读。
type InjectedMemory struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Active  bool   `json:"active"`
}

// ConversationData 是调度器消费的已加载会话记录。
// 持久化与权限校验由外部协作方完成，这里只是纯数据。
type ConversationData struct {
	ModelID  string
	History  []Message // 按时间顺序（最旧在前）
	Memories []InjectedMemory
}

// ConversationContext 是提供者中立的上下文对象，每次调用新建、调用后丢弃。
type ConversationContext struct {
	SystemPrompt string
	MemoryBlock  string    // 为空表示没有激活的注入记忆
	History      []Message // 最多 historyLimit 条，时间顺序
	UserMessage  string
}

// Request 是适配器的统一入参。
// Context 非空时走消息列表构造；为空时 Prompt 携带完整提示词（兼容旧入口）。
type Request struct {
	Model       string
	Prompt      string
	UserMessage string // 未经拼接的当前用户消息；回显类适配器用它还原原文，不从 Prompt 反解
	Context     *ConversationContext
	Credential  string // 已解密的 API Key；为空时适配器回退到各自的环境变量
}

// Response 是所有适配器与调度器的唯一返回形态（统一响应信封）。
// 任何失败路径都被折叠进 Status=error + Error 字段，绝不向调用方抛错。
type Response struct {
	Reply     string `json:"reply"`
	ModelUsed string `json:"model_used"`
	Provider  string `json:"provider"`
	Tokens    int    `json:"tokens"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Provider 定义统一的适配器契约。
// Call 永不返回 Go error：缺失凭据、上游拒绝、内容拦截等全部
// 折叠为 Status=error 的信封，调用方只需判断 Status。
type Provider interface {
	// Name 返回 provider tag（openai/anthropic/google/deepseek/groq/local/echo）
	Name() string

	// Call 发起一次补全调用并返回统一信封，永不为 nil。
	Call(ctx context.Context, req *Request) *Response
}

// Success 构造成功信封。
func Success(provider, model, reply string, tokens int) *Response {
	return &Response{
		Reply:     reply,
		ModelUsed: model,
		Provider:  provider,
		Tokens:    tokens,
		Status:    StatusSuccess,
	}
}

// Failure 构造错误信封。reply 面向人类，detail 保留原始错误文本。
func Failure(provider, model, reply, detail string) *Response {
	return &Response{
		Reply:     reply,
		ModelUsed: model,
		Provider:  provider,
		Status:    StatusError,
		Error:     detail,
	}
}
