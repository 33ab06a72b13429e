// Package groq 通过 openaicompat 基座接入 Groq 的快速推理服务。
// Groq 的 OpenAI 兼容端点挂在 /openai/v1 下。
package groq

import (
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers/openaicompat"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// New 创建 Groq 适配器。凭据缺省时回退 GROQ_API_KEY。
func New(cfg Config, logger *zap.Logger) *openaicompat.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	return openaicompat.New(openaicompat.Config{
		Tag:          llm.ProviderGroq,
		DisplayName:  "Groq",
		BaseURL:      cfg.BaseURL,
		EndpointPath: "/chat/completions",
		EnvVar:       llm.EnvGroqKey,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.Timeout,
	}, logger)
}
