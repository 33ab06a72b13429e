// Package local 是本地模型（Ollama / LM Studio 等）的占位适配器。
// 当前不发起网络调用，返回固定的占位应答。
// TODO: 对接 Ollama 的 /api/generate 接口后替换占位实现。
package local

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/llm"
)

type Provider struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{logger: logger}
}

func (p *Provider) Name() string { return llm.ProviderLocal }

func (p *Provider) Call(ctx context.Context, req *llm.Request) *llm.Response {
	reply := fmt.Sprintf(
		"[Local %s] This is a placeholder response. Integrate local model server for production.",
		req.Model)
	return llm.Success(llm.ProviderLocal, req.Model, reply, 0)
}

var _ llm.Provider = (*Provider)(nil)
