// =============================================================================
// 📦 Chimera 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Providers: DefaultProvidersConfig(),
		Store:     DefaultStoreConfig(),
		Log:       DefaultLogConfig(),
	}
}

// DefaultProvidersConfig 返回默认 provider 配置。
// API Key 默认留空：运行时回退到各 provider 的环境变量。
func DefaultProvidersConfig() ProvidersConfig {
	base := ProviderConfig{Timeout: 30 * time.Second}
	return ProvidersConfig{
		OpenAI:    base,
		Anthropic: base,
		Google:    GoogleProviderConfig{ProviderConfig: base},
		DeepSeek:  base,
		Groq:      base,
	}
}

// DefaultStoreConfig 返回默认持久化配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:      "chimera.db",
		Retention: "30-days",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}
