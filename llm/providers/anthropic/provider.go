package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/internal/tlsutil"
	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers"
)

// Provider 实现 Anthropic Claude 的适配器。
// Claude API 与 OpenAI 兼容系有两处显著差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 内容通过独立的 system 字段传递，不出现在 messages 里
type Provider struct {
	cfg    providers.AnthropicConfig
	client *http.Client
	logger *zap.Logger
}

const (
	displayName      = "Anthropic"
	anthropicVersion = "2023-06-01"
)

// New 创建 Anthropic 适配器。凭据缺省时回退 ANTHROPIC_API_KEY。
func New(cfg providers.AnthropicConfig, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second // Claude 响应可能较慢
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger,
	}
}

func (p *Provider) Name() string { return llm.ProviderAnthropic }

type anthropicMessage struct {
	Role    string `json:"role"` // user 或 assistant
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   *anthropicUsage    `json:"usage,omitempty"`
}

type anthropicErrorResp struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// convertMessages 提取 system 内容并丢弃历史中的 system 行
// （Claude 的 messages 只接受 user/assistant 交替）。
func convertMessages(msgs []llm.Message) (system string, out []anthropicMessage) {
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			system = m.Content
			continue
		}
		out = append(out, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	return system, out
}

func (p *Provider) buildHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Call 发起一次 messages API 调用，所有失败折叠为 error 信封。
func (p *Provider) Call(ctx context.Context, req *llm.Request) *llm.Response {
	apiKey := llm.ResolveCredential(firstNonEmpty(req.Credential, p.cfg.APIKey), llm.EnvAnthropicKey)
	if apiKey == "" {
		return providers.MissingCredentialEnvelope(displayName, llm.ProviderAnthropic, req.Model)
	}

	system, messages := convertMessages(providers.BuildChatMessages(req))
	body := anthropicRequest{
		Model:     req.Model,
		System:    system,
		Messages:  messages,
		MaxTokens: providers.DefaultMaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return p.fail(req.Model, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()})
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return p.fail(req.Model, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()})
	}
	p.buildHeaders(httpReq, apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return p.fail(req.Model, &llm.Error{
			Code:    providers.ClassifyErrorText(err.Error()),
			Message: err.Error(),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrMsg(resp.Body)
		p.logger.Warn("anthropic call rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return p.fail(req.Model, providers.MapHTTPError(resp.StatusCode, msg, llm.ProviderAnthropic))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return p.fail(req.Model, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()})
	}

	var reply strings.Builder
	for _, c := range aResp.Content {
		if c.Type == "text" {
			reply.WriteString(c.Text)
		}
	}
	if reply.Len() == 0 {
		return p.fail(req.Model, &llm.Error{Code: llm.ErrUpstreamError, Message: "empty response content"})
	}

	servedModel := aResp.Model
	if servedModel == "" {
		servedModel = req.Model
	}
	tokens := 0
	if aResp.Usage != nil {
		tokens = aResp.Usage.InputTokens + aResp.Usage.OutputTokens
	}
	return llm.Success(llm.ProviderAnthropic, servedModel, reply.String(), tokens)
}

func (p *Provider) fail(model string, lerr *llm.Error) *llm.Response {
	lerr.Provider = llm.ProviderAnthropic
	return providers.ErrorEnvelope(displayName, llm.ProviderAnthropic, model, lerr)
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp anthropicErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(data)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

var _ llm.Provider = (*Provider)(nil)
