package llm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/chimera/llm/tokenizer"
)

// Dispatcher 按模型标识把聊天轮次路由到对应的 Provider 适配器。
// 除不可变注册表外无跨调用状态，可被任意并发调用。
type Dispatcher struct {
	registry  *ModelRegistry
	adapters  map[string]Provider // provider tag -> 适配器
	logger    *zap.Logger
	tracer    trace.Tracer
	estimator *tokenizer.Estimator
}

type DispatcherOptions struct {
	Logger *zap.Logger
}

// NewDispatcher 构造调度器。adapters 以 provider tag 为键；
// 未注册 tag 的请求统一落到 echo 适配器。
func NewDispatcher(registry *ModelRegistry, adapters map[string]Provider, opts DispatcherOptions) *Dispatcher {
	if registry == nil {
		registry = DefaultModelRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := make(map[string]Provider, len(adapters))
	for tag, p := range adapters {
		m[tag] = p
	}
	return &Dispatcher{
		registry:  registry,
		adapters:  m,
		logger:    logger,
		tracer:    otel.Tracer("chimera/llm"),
		estimator: tokenizer.NewEstimator(),
	}
}

// Complete 是上下文感知的主入口：基于已加载的会话记录组装上下文并路由。
// credential 是已解密的 API Key，为空是合法输入（适配器回退到环境变量）。
func (d *Dispatcher) Complete(ctx context.Context, conv ConversationData, userMessage, credential string) *Response {
	provider := d.registry.ResolveProvider(conv.ModelID)
	model := d.registry.Normalize(conv.ModelID)

	req := &Request{Model: model, Credential: credential}
	switch provider {
	case ProviderLocal, ProviderEcho:
		// 离线兜底不消费会话上下文，直接回显当前消息
		req.Prompt = userMessage
		req.UserMessage = userMessage
	default:
		req.Context = BuildContext(conv, userMessage)
	}

	return d.invoke(ctx, provider, req)
}

// CompletePrompt 是旧入口：裸模型名 + 提示词，可选预拼接的上下文文本。
// 与 Complete 收敛到同一批适配器。
func (d *Dispatcher) CompletePrompt(ctx context.Context, modelName, prompt, contextText, credential string) *Response {
	provider := d.registry.ResolveProvider(modelName)
	model := d.registry.Normalize(modelName)

	req := &Request{
		Model:       model,
		Prompt:      JoinPromptContext(contextText, prompt),
		UserMessage: prompt,
		Credential:  credential,
	}
	return d.invoke(ctx, provider, req)
}

// IsModelSupported 判断标识是否在注册表内。无副作用。
func (d *Dispatcher) IsModelSupported(identifier string) bool {
	return d.registry.IsSupported(identifier)
}

// SupportedModels 按 provider 分组返回已知模型。无副作用。
func (d *Dispatcher) SupportedModels() map[string][]string {
	return d.registry.SupportedModels()
}

func (d *Dispatcher) invoke(ctx context.Context, provider string, req *Request) *Response {
	ctx, span := d.tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", req.Model),
	))
	defer span.End()

	adapter, ok := d.adapters[provider]
	if !ok {
		// 未知 provider 不是错误：按可用性优先原则降级到 echo
		adapter, ok = d.adapters[ProviderEcho]
		if !ok {
			return Failure(provider, req.Model,
				fmt.Sprintf("[%s %s] no adapter registered", provider, req.Model),
				"no adapter registered")
		}
		d.logger.Warn("falling back to echo adapter",
			zap.String("provider", provider),
			zap.String("model", req.Model),
		)
	}

	promptText := req.Prompt
	if req.Context != nil {
		promptText = FlattenPrompt(req.Context)
	}
	d.logger.Debug("dispatching completion",
		zap.String("provider", adapter.Name()),
		zap.String("model", req.Model),
		zap.Int("prompt_tokens_estimate", d.estimator.Estimate(req.Model, promptText)),
		zap.Bool("has_credential", req.Credential != ""),
	)

	start := time.Now()
	resp := adapter.Call(ctx, req)
	latency := time.Since(start)
	if resp == nil {
		resp = Failure(adapter.Name(), req.Model,
			fmt.Sprintf("[%s %s] adapter returned no response", adapter.Name(), req.Model),
			"nil adapter response")
	}

	observeCompletion(resp.Provider, resp, latency)
	span.SetAttributes(attribute.String("llm.status", string(resp.Status)))

	if resp.Status == StatusError {
		d.logger.Warn("completion failed",
			zap.String("provider", resp.Provider),
			zap.String("model", resp.ModelUsed),
			zap.String("error", resp.Error),
			zap.Duration("latency", latency),
		)
	} else {
		d.logger.Info("completion served",
			zap.String("provider", resp.Provider),
			zap.String("model", resp.ModelUsed),
			zap.Int("tokens", resp.Tokens),
			zap.Duration("latency", latency),
		)
	}
	return resp
}
