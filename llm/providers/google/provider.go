// Package google 接入 Google 的 Gemini 生成接口。
// 该提供者族存在两代客户端：新一代 generateContent 与旧一代
// generateText。可用的后端在构造时一次性选定（能力探测），
// 调用期不做嵌套回退。
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/internal/tlsutil"
	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers"
)

const displayName = "Google"

// modelRemap 把尚未上线的请求名替换为最接近的可用等价模型。
var modelRemap = map[string]string{
	"gemini-2.5-flash":      "gemini-2.0-flash",
	"gemini-2.5-pro":        "gemini-1.5-pro",
	"gemini-2.0-flash-lite": "gemini-2.0-flash",
}

// RemapModel 返回上游实际接受的模型名。
func RemapModel(model string) string {
	if actual, ok := modelRemap[model]; ok {
		return actual
	}
	return model
}

// generateBackend 是一代生成客户端的抽象。
type generateBackend interface {
	name() string
	generate(ctx context.Context, apiKey, model string, req *llm.Request) (reply string, tokens int, lerr *llm.Error)
}

// Provider 实现 Google 的适配器。
type Provider struct {
	cfg     providers.GoogleConfig
	client  *http.Client
	logger  *zap.Logger
	backend generateBackend // 构造时选定；nil 表示两代客户端都不可用
}

// New 创建 Google 适配器并选定生成后端。
// 凭据缺省时回退 GOOGLE_AI_API_KEY。
func New(cfg providers.GoogleConfig, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger,
	}
	switch {
	case !cfg.DisableGenerateContent:
		p.backend = &generateContentBackend{p: p}
	case !cfg.DisableLegacy:
		p.backend = &generateTextBackend{p: p}
		logger.Warn("generateContent backend disabled, using legacy generateText")
	}
	return p
}

func (p *Provider) Name() string { return llm.ProviderGoogle }

// Call 发起一次生成调用。两代客户端都不可用时返回能力缺失信封，
// 其余失败路径同样折叠为 error 信封。
func (p *Provider) Call(ctx context.Context, req *llm.Request) *llm.Response {
	model := RemapModel(req.Model)

	if p.backend == nil {
		return p.fail(model, &llm.Error{
			Code:    llm.ErrUnsupportedCapability,
			Message: "no Gemini generation backend available",
		})
	}

	apiKey := llm.ResolveCredential(firstNonEmpty(req.Credential, p.cfg.APIKey), llm.EnvGoogleKey)
	if apiKey == "" {
		return providers.MissingCredentialEnvelope(displayName, llm.ProviderGoogle, model)
	}

	p.logger.Debug("google generate",
		zap.String("backend", p.backend.name()),
		zap.String("requested_model", req.Model),
		zap.String("actual_model", model),
	)

	reply, tokens, lerr := p.backend.generate(ctx, apiKey, model, req)
	if lerr != nil {
		return p.fail(model, lerr)
	}
	return llm.Success(llm.ProviderGoogle, model, reply, tokens)
}

func (p *Provider) fail(model string, lerr *llm.Error) *llm.Response {
	lerr.Provider = llm.ProviderGoogle
	return providers.ErrorEnvelope(displayName, llm.ProviderGoogle, model, lerr)
}

// ---- 新一代 generateContent 后端 ----

type generateContentBackend struct {
	p *Provider
}

func (b *generateContentBackend) name() string { return "generateContent" }

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user 或 model
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// buildContents 组装 Gemini 的 contents 序列。
// 该 API 没有 system 角色：没有历史时把 system 内容折进首个用户轮次。
func buildContents(req *llm.Request) []geminiContent {
	if req.Context == nil {
		return []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}}
	}
	pctx := req.Context
	contents := make([]geminiContent, 0, len(pctx.History)+1)
	for _, m := range pctx.History {
		role := "model"
		if m.Role == llm.RoleUser {
			role = "user"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	userMessage := pctx.UserMessage
	if len(contents) == 0 {
		system := pctx.SystemPrompt
		if pctx.MemoryBlock != "" {
			system += "\n" + pctx.MemoryBlock
		}
		userMessage = fmt.Sprintf("%s\n\nUser: %s", system, userMessage)
	}
	return append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: userMessage}}})
}

func (b *generateContentBackend) generate(ctx context.Context, apiKey, model string, req *llm.Request) (string, int, *llm.Error) {
	body := geminiRequest{
		Contents: buildContents(req),
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     providers.DefaultTemperature,
			MaxOutputTokens: providers.DefaultMaxTokens,
		},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(b.p.cfg.BaseURL, "/"), model)

	var gResp geminiResponse
	if lerr := b.p.post(ctx, endpoint, apiKey, body, &gResp); lerr != nil {
		return "", 0, lerr
	}

	var reply strings.Builder
	if len(gResp.Candidates) > 0 {
		for _, part := range gResp.Candidates[0].Content.Parts {
			reply.WriteString(part.Text)
		}
	}
	if reply.Len() == 0 {
		if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
			return "", 0, &llm.Error{
				Code:    llm.ErrContentBlocked,
				Message: "content blocked by safety filters: " + gResp.PromptFeedback.BlockReason,
			}
		}
		return "", 0, &llm.Error{Code: llm.ErrUpstreamError, Message: "no response generated"}
	}

	tokens := 0
	if gResp.UsageMetadata != nil {
		tokens = gResp.UsageMetadata.TotalTokenCount
	}
	return reply.String(), tokens, nil
}

// ---- 旧一代 generateText 后端 ----

type generateTextBackend struct {
	p *Provider
}

func (b *generateTextBackend) name() string { return "generateText" }

type palmRequest struct {
	Prompt struct {
		Text string `json:"text"`
	} `json:"prompt"`
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type palmResponse struct {
	Candidates []struct {
		Output string `json:"output"`
	} `json:"candidates"`
}

func (b *generateTextBackend) generate(ctx context.Context, apiKey, model string, req *llm.Request) (string, int, *llm.Error) {
	// 旧接口只接受单段提示词，整个上下文折叠为纯文本
	prompt := req.Prompt
	if req.Context != nil {
		prompt = llm.FlattenPrompt(req.Context)
	}

	var body palmRequest
	body.Prompt.Text = prompt
	body.Temperature = providers.DefaultTemperature
	body.MaxOutputTokens = providers.DefaultMaxTokens

	endpoint := fmt.Sprintf("%s/v1beta2/models/%s:generateText",
		strings.TrimRight(b.p.cfg.BaseURL, "/"), model)

	var pResp palmResponse
	if lerr := b.p.post(ctx, endpoint, apiKey, body, &pResp); lerr != nil {
		return "", 0, lerr
	}
	if len(pResp.Candidates) == 0 || pResp.Candidates[0].Output == "" {
		return "", 0, &llm.Error{Code: llm.ErrUpstreamError, Message: "no response generated"}
	}
	// 旧接口不报告 token 用量
	return pResp.Candidates[0].Output, 0, nil
}

// post 执行一次 JSON POST 并解码响应，HTTP 级失败做统一分类。
func (p *Provider) post(ctx context.Context, endpoint, apiKey string, body, out any) *llm.Error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()}
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return &llm.Error{Code: providers.ClassifyErrorText(err.Error()), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		p.logger.Warn("google call rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return providers.MapHTTPError(resp.StatusCode, msg, llm.ProviderGoogle)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()}
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

var _ llm.Provider = (*Provider)(nil)
