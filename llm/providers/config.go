package providers

import "time"

// 默认生成参数，与各提供者的对话补全调用保持一致。
const (
	DefaultTemperature float32 = 0.7
	DefaultMaxTokens           = 2000
)

// BaseProviderConfig 是所有适配器共享的配置片段。
// APIKey 可为空：适配器会按「显式凭据 → 环境变量」的顺序回退。
type BaseProviderConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig 是 Anthropic 适配器配置。
type AnthropicConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// GoogleConfig 是 Google 适配器配置。
// 两代生成后端在构造时一次性选定，调用期不再切换。
type GoogleConfig struct {
	BaseProviderConfig `yaml:",inline"`

	// DisableGenerateContent 关闭新一代 generateContent 后端。
	DisableGenerateContent bool `yaml:"disable_generate_content"`
	// DisableLegacy 关闭旧一代 generateText 后端。
	DisableLegacy bool `yaml:"disable_legacy"`
}
