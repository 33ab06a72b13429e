// Package openaicompat 是 OpenAI 兼容提供者的共享实现。
// OpenAI、DeepSeek、Groq 只在名称、BaseURL 和环境变量回退上有差异，
// 各自的包只负责填配置。
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/internal/tlsutil"
	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers"
)

// Config 描述一个 OpenAI 兼容提供者。
type Config struct {
	// Tag 是路由用的 provider tag（如 "openai"、"deepseek"）。
	Tag string

	// DisplayName 用于信封文案（如 "OpenAI"、"DeepSeek"）。
	DisplayName string

	// BaseURL 为空时由各 provider 包填默认值。
	BaseURL string

	// EndpointPath 默认 "/v1/chat/completions"。
	EndpointPath string

	// EnvVar 是凭据缺省时读取的环境变量名。
	EnvVar string

	// APIKey 是进程级默认凭据，可为空。
	APIKey string

	// Timeout 是 HTTP 客户端超时，默认 30s。
	Timeout time.Duration
}

// Provider 实现 llm.Provider。
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
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

func (p *Provider) Name() string { return p.cfg.Tag }

func (p *Provider) endpoint() string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + p.cfg.EndpointPath
}

// Call 发起一次对话补全。所有失败路径折叠为 error 信封，不返回 Go error。
func (p *Provider) Call(ctx context.Context, req *llm.Request) *llm.Response {
	apiKey := llm.ResolveCredential(firstNonEmpty(req.Credential, p.cfg.APIKey), p.cfg.EnvVar)
	if apiKey == "" {
		// 不发起网络请求
		return providers.MissingCredentialEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model)
	}

	body := providers.OpenAICompatRequest{
		Model:       req.Model,
		Messages:    providers.ToCompatMessages(providers.BuildChatMessages(req)),
		Temperature: providers.DefaultTemperature,
		MaxTokens:   providers.DefaultMaxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model,
			&llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Provider: p.cfg.Tag})
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model,
			&llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Provider: p.cfg.Tag})
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model,
			&llm.Error{Code: providers.ClassifyErrorText(err.Error()), Message: err.Error(), Provider: p.cfg.Tag})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		lerr := providers.MapHTTPError(resp.StatusCode, msg, p.cfg.Tag)
		p.logger.Warn("chat completion rejected",
			zap.String("provider", p.cfg.Tag),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model, lerr)
	}

	var oaResp providers.OpenAICompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaResp); err != nil {
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model,
			&llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Provider: p.cfg.Tag})
	}
	if len(oaResp.Choices) == 0 {
		return providers.ErrorEnvelope(p.cfg.DisplayName, p.cfg.Tag, req.Model,
			&llm.Error{Code: llm.ErrUpstreamError, Message: "no choices in response", Provider: p.cfg.Tag})
	}

	// 上游可能改写实际服务的模型名，以响应为准
	servedModel := oaResp.Model
	if servedModel == "" {
		servedModel = req.Model
	}
	tokens := 0
	if oaResp.Usage != nil {
		tokens = oaResp.Usage.TotalTokens
	}
	return llm.Success(p.cfg.Tag, servedModel, oaResp.Choices[0].Message.Content, tokens)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

var _ llm.Provider = (*Provider)(nil)
