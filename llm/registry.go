package llm

import (
	"sort"
	"strings"
)

// Provider tags 路由的目标标识。
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderDeepSeek  = "deepseek"
	ProviderGroq      = "groq"
	ProviderLocal     = "local"
	ProviderEcho      = "echo"
)

// modelPrefix 是前端附加的装饰性前缀，查表前去掉。
const modelPrefix = "model-"

// ModelRegistry 是模型标识到 provider tag 的不可变映射。
// 进程启动时构造一次，之后任意并发读取无需同步。
type ModelRegistry struct {
	models map[string]string
	keys   []string // 排序后的规范键，保证大小写回退匹配的确定性
}

// NewModelRegistry 拷贝传入映射构造一个注册表。
func NewModelRegistry(models map[string]string) *ModelRegistry {
	m := make(map[string]string, len(models))
	keys := make([]string, 0, len(models))
	for k, v := range models {
		m[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &ModelRegistry{models: m, keys: keys}
}

// DefaultModelRegistry 返回内置的模型表。
func DefaultModelRegistry() *ModelRegistry {
	return NewModelRegistry(map[string]string{
		// OpenAI
		"gpt-4":         ProviderOpenAI,
		"gpt-4-turbo":   ProviderOpenAI,
		"gpt-4o":        ProviderOpenAI,
		"gpt-3.5-turbo": ProviderOpenAI,

		// Anthropic
		"claude-3-opus":     ProviderAnthropic,
		"claude-3-sonnet":   ProviderAnthropic,
		"claude-3-haiku":    ProviderAnthropic,
		"claude-3.5-sonnet": ProviderAnthropic,

		// Google
		"gemini-2.0-flash":     ProviderGoogle,
		"gemini-2.0-flash-exp": ProviderGoogle,
		"gemini-1.5-flash":     ProviderGoogle,
		"gemini-1.5-pro":       ProviderGoogle,

		// DeepSeek
		"deepseek-chat":  ProviderDeepSeek,
		"deepseek-coder": ProviderDeepSeek,

		// Groq 托管的开源模型
		"llama-3.3-70b-versatile": ProviderGroq,
		"llama-3.1-8b-instant":    ProviderGroq,
		"llama3-70b-8192":         ProviderGroq,
		"llama3-8b-8192":          ProviderGroq,
		"mixtral-8x7b-32768":      ProviderGroq,
		"gemma2-9b-it":            ProviderGroq,

		// 离线兜底
		"echo":  ProviderEcho,
		"local": ProviderLocal,
	})
}

// stripPrefix 去掉装饰性前缀。前端可能重复拼接，
// 循环剥离保证 Normalize 对任意输入幂等。
func stripPrefix(identifier string) string {
	for strings.HasPrefix(identifier, modelPrefix) {
		identifier = strings.TrimPrefix(identifier, modelPrefix)
	}
	return identifier
}

// lookup 按 精确 → 大小写不敏感 的优先级查表，
// 命中时返回规范键和 provider tag。
func (r *ModelRegistry) lookup(name string) (canonical, provider string, ok bool) {
	if p, hit := r.models[name]; hit {
		return name, p, true
	}
	lower := strings.ToLower(name)
	for _, key := range r.keys {
		if strings.ToLower(key) == lower {
			return key, r.models[key], true
		}
	}
	return "", "", false
}

// ResolveProvider 解析标识对应的 provider tag。
// 未知标识不报错，按「永不拒绝请求」策略落到 echo。
func (r *ModelRegistry) ResolveProvider(identifier string) string {
	if _, p, ok := r.lookup(stripPrefix(identifier)); ok {
		return p
	}
	return ProviderEcho
}

// Normalize 把自由格式的标识归一到注册表的规范键。
// 未命中时原样返回（由上游 API 自行校验），因此对任意输入幂等。
func (r *ModelRegistry) Normalize(identifier string) string {
	clean := stripPrefix(identifier)
	if canonical, _, ok := r.lookup(clean); ok {
		return canonical
	}
	return clean
}

// IsSupported 判断标识是否已知（含规范键的前缀扩展写法）。
func (r *ModelRegistry) IsSupported(identifier string) bool {
	if _, ok := r.models[identifier]; ok {
		return true
	}
	for _, key := range r.keys {
		if strings.HasPrefix(identifier, key) {
			return true
		}
	}
	return false
}

// SupportedModels 按 provider 分组返回全部已知标识。无副作用。
func (r *ModelRegistry) SupportedModels() map[string][]string {
	out := make(map[string][]string)
	for _, key := range r.keys {
		p := r.models[key]
		out[p] = append(out[p], key)
	}
	return out
}
