package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProvider(t *testing.T) {
	r := DefaultModelRegistry()

	cases := []struct {
		identifier string
		provider   string
	}{
		{"gpt-4", ProviderOpenAI},
		{"gpt-4o", ProviderOpenAI},
		{"claude-3-opus", ProviderAnthropic},
		{"claude-3.5-sonnet", ProviderAnthropic},
		{"gemini-2.0-flash", ProviderGoogle},
		{"deepseek-chat", ProviderDeepSeek},
		{"llama-3.3-70b-versatile", ProviderGroq},
		{"gemma2-9b-it", ProviderGroq},
		{"echo", ProviderEcho},
		{"local", ProviderLocal},
		// 装饰性前缀，含重复拼接
		{"model-gpt-4", ProviderOpenAI},
		{"model-claude-3-haiku", ProviderAnthropic},
		{"model-model-gpt-4", ProviderOpenAI},
		// 大小写回退
		{"GPT-4", ProviderOpenAI},
		{"Claude-3-Opus", ProviderAnthropic},
		// 未知标识落到 echo
		{"totally-unknown", ProviderEcho},
		{"", ProviderEcho},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.provider, r.ResolveProvider(tc.identifier), tc.identifier)
	}
}

func TestNormalize(t *testing.T) {
	r := DefaultModelRegistry()

	assert.Equal(t, "gpt-4", r.Normalize("gpt-4"))
	assert.Equal(t, "gpt-4", r.Normalize("model-gpt-4"))
	assert.Equal(t, "gpt-4", r.Normalize("GPT-4"))
	// 重复拼接的前缀一次归一到位
	assert.Equal(t, "gpt-4", r.Normalize("model-model-gpt-4"))
	// 未命中原样返回（前缀仍被去掉）
	assert.Equal(t, "unknown-model", r.Normalize("model-unknown-model"))
	assert.Equal(t, "unknown-model", r.Normalize("unknown-model"))
}

func TestNormalizeIdempotent(t *testing.T) {
	r := DefaultModelRegistry()
	for _, id := range []string{"gpt-4", "model-gpt-4", "model-model-gpt-4", "model-model-unknown", "CLAUDE-3-OPUS", "mystery", ""} {
		once := r.Normalize(id)
		assert.Equal(t, once, r.Normalize(once), id)
	}
}

func TestIsSupported(t *testing.T) {
	r := DefaultModelRegistry()

	assert.True(t, r.IsSupported("gpt-4"))
	assert.True(t, r.IsSupported("echo"))
	// 规范键的前缀扩展写法
	assert.True(t, r.IsSupported("gpt-4-turbo-2024-04-09"))
	assert.True(t, r.IsSupported("claude-3-opus-20240229"))

	assert.False(t, r.IsSupported("grok-1"))
	assert.False(t, r.IsSupported(""))
	// 装饰性前缀只影响路由，不影响支持性判定
	assert.False(t, r.IsSupported("model-echo"))
}

func TestSupportedModelsGrouping(t *testing.T) {
	r := DefaultModelRegistry()
	groups := r.SupportedModels()

	assert.Contains(t, groups[ProviderOpenAI], "gpt-4")
	assert.Contains(t, groups[ProviderAnthropic], "claude-3.5-sonnet")
	assert.Contains(t, groups[ProviderGroq], "mixtral-8x7b-32768")
	assert.Equal(t, []string{"echo"}, groups[ProviderEcho])

	// 分组内有序，重复调用结果一致
	assert.Equal(t, groups, r.SupportedModels())
}

func TestCaseInsensitiveFallbackDeterministic(t *testing.T) {
	// 两个键仅大小写不同：排序后回退必须稳定命中同一个
	r := NewModelRegistry(map[string]string{
		"My-Model": ProviderOpenAI,
		"my-model": ProviderGroq,
	})
	first := r.Normalize("MY-MODEL")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.Normalize("MY-MODEL"))
	}
}
