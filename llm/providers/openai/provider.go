// Package openai 通过共享的 openaicompat 基座接入 OpenAI 官方 API。
package openai

import (
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers/openaicompat"
)

// Config 见 openaicompat.Config；这里只暴露业务侧关心的字段。
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// New 创建 OpenAI 适配器。凭据缺省时回退 OPENAI_API_KEY。
func New(cfg Config, logger *zap.Logger) *openaicompat.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	return openaicompat.New(openaicompat.Config{
		Tag:         llm.ProviderOpenAI,
		DisplayName: "OpenAI",
		BaseURL:     cfg.BaseURL,
		EnvVar:      llm.EnvOpenAIKey,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.Timeout,
	}, logger)
}
