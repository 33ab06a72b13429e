// Package deepseek 通过 openaicompat 基座接入 DeepSeek（OpenAI 兼容）。
package deepseek

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

// New 创建 DeepSeek 适配器。凭据缺省时回退 DEEPSEEK_API_KEY。
func New(cfg Config, logger *zap.Logger) *openaicompat.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	return openaicompat.New(openaicompat.Config{
		Tag:         llm.ProviderDeepSeek,
		DisplayName: "DeepSeek",
		BaseURL:     cfg.BaseURL,
		EnvVar:      llm.EnvDeepSeekKey,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.Timeout,
	}, logger)
}
