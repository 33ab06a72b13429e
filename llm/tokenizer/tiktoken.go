// Package tokenizer 提供提示词体积估算，用于调度日志与容量观测。
// 对 OpenAI 系模型使用 tiktoken 精确计数，其余模型退化为空白分词。
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// 模型名前缀 → tiktoken 编码。长前缀在前，gpt-4o 不能落进 gpt-4。
var modelEncodings = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5-turbo", "cl100k_base"},
}

const defaultEncoding = "cl100k_base"

// Estimator 是线程安全的 token 估算器，编码懒加载并缓存。
type Estimator struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken
}

func NewEstimator() *Estimator {
	return &Estimator{encs: make(map[string]*tiktoken.Tiktoken)}
}

func encodingFor(model string) string {
	for _, m := range modelEncodings {
		if strings.HasPrefix(model, m.prefix) {
			return m.encoding
		}
	}
	return defaultEncoding
}

func (e *Estimator) encoding(name string) (*tiktoken.Tiktoken, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enc, ok := e.encs[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	e.encs[name] = enc
	return enc, nil
}

// Estimate 返回 text 的近似 token 数。编码不可用时退化为词数，
// 保证调用方永远拿到一个可用的估算值。
func (e *Estimator) Estimate(model, text string) int {
	if text == "" {
		return 0
	}
	enc, err := e.encoding(encodingFor(model))
	if err != nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}
