package llm

// 统一的错误码，用于对齐 HTTP 状态与信封文案。
// 未知 provider 不在此列：它不是错误，直接降级到 echo。
type ErrorCode string

const (
	ErrMissingCredential     ErrorCode = "LLM_MISSING_CREDENTIAL"     // 没有可用的 API Key
	ErrUnsupportedCapability ErrorCode = "LLM_UNSUPPORTED_CAPABILITY" // 客户端能力缺失
	ErrUnauthorized          ErrorCode = "LLM_UNAUTHORIZED"           // 凭据被上游拒绝
	ErrRateLimited           ErrorCode = "LLM_RATE_LIMITED"           // 限流或配额用尽
	ErrContentBlocked        ErrorCode = "LLM_CONTENT_BLOCKED"        // 命中内容安全
	ErrUpstreamError         ErrorCode = "LLM_UPSTREAM_ERROR"         // 其余上游失败
)

// Error 是适配器内部使用的类型化错误。
// 它只在适配器内部流转，到达边界前一律转换为 Response 信封。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }
