// =============================================================================
// 🔌 Chimera 组件装配
// =============================================================================
// 把配置翻译成可用的日志器与调度器实例
// =============================================================================
package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers"
	"github.com/BaSui01/chimera/llm/providers/anthropic"
	"github.com/BaSui01/chimera/llm/providers/deepseek"
	"github.com/BaSui01/chimera/llm/providers/echo"
	"github.com/BaSui01/chimera/llm/providers/google"
	"github.com/BaSui01/chimera/llm/providers/groq"
	"github.com/BaSui01/chimera/llm/providers/local"
	"github.com/BaSui01/chimera/llm/providers/openai"
)

// BuildLogger 按日志配置构造 zap 日志器
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if len(c.Log.OutputPaths) > 0 {
		zcfg.OutputPaths = c.Log.OutputPaths
	}
	zcfg.DisableCaller = !c.Log.EnableCaller

	return zcfg.Build()
}

// BuildDispatcher 装配全部 provider 适配器并返回调度器。
// echo 与 local 无需凭据，始终注册，保证离线路径可用。
func (c *Config) BuildDispatcher(logger *zap.Logger) *llm.Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := c.Providers

	adapters := map[string]llm.Provider{
		llm.ProviderOpenAI: openai.New(openai.Config{
			APIKey:  p.OpenAI.APIKey,
			BaseURL: p.OpenAI.BaseURL,
			Timeout: p.OpenAI.Timeout,
		}, logger),
		llm.ProviderAnthropic: anthropic.New(providers.AnthropicConfig{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:  p.Anthropic.APIKey,
				BaseURL: p.Anthropic.BaseURL,
				Timeout: p.Anthropic.Timeout,
			},
		}, logger),
		llm.ProviderGoogle: google.New(providers.GoogleConfig{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:  p.Google.APIKey,
				BaseURL: p.Google.BaseURL,
				Timeout: p.Google.Timeout,
			},
			DisableGenerateContent: p.Google.DisableGenerateContent,
			DisableLegacy:          p.Google.DisableLegacy,
		}, logger),
		llm.ProviderDeepSeek: deepseek.New(deepseek.Config{
			APIKey:  p.DeepSeek.APIKey,
			BaseURL: p.DeepSeek.BaseURL,
			Timeout: p.DeepSeek.Timeout,
		}, logger),
		llm.ProviderGroq: groq.New(groq.Config{
			APIKey:  p.Groq.APIKey,
			BaseURL: p.Groq.BaseURL,
			Timeout: p.Groq.Timeout,
		}, logger),
		llm.ProviderEcho:  echo.New(logger),
		llm.ProviderLocal: local.New(logger),
	}

	return llm.NewDispatcher(llm.DefaultModelRegistry(), adapters, llm.DispatcherOptions{
		Logger: logger,
	})
}
