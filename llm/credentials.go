package llm

import (
	"os"
	"strings"
)

// 各 provider 的环境变量回退，仅在调用方未显式提供凭据时读取。
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGoogleKey    = "GOOGLE_AI_API_KEY"
	EnvDeepSeekKey  = "DEEPSEEK_API_KEY"
	EnvGroqKey      = "GROQ_API_KEY"
)

// ResolveCredential 返回本次调用可用的 API Key。
// 优先显式凭据，其次 provider 专属环境变量；两者皆空返回 ""。
// 凭据只读，本核心不缓存、不回写。
func ResolveCredential(explicit, envVar string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	if envVar == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envVar))
}
