package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/chimera/llm"
	"github.com/BaSui01/chimera/llm/providers"
)

func testConfig(baseURL string) Config {
	return Config{
		Tag:         llm.ProviderOpenAI,
		DisplayName: "OpenAI",
		BaseURL:     baseURL,
		EnvVar:      "TEST_COMPAT_API_KEY",
	}
}

func TestCallSuccess(t *testing.T) {
	var gotReq providers.OpenAICompatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			Model: "gpt-4-0613",
			Choices: []providers.OpenAICompatChoice{
				{Message: providers.OpenAICompatMessage{Role: "assistant", Content: "hello!"}},
			},
			Usage: &providers.OpenAICompatUsage{TotalTokens: 42},
		})
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{
		Model:      "gpt-4",
		Credential: "sk-test",
		Context: &llm.ConversationContext{
			SystemPrompt: "sys",
			History:      []llm.Message{{Role: llm.RoleUser, Content: "q1"}},
			UserMessage:  "q2",
		},
	})

	require.NotNil(t, resp)
	assert.Equal(t, llm.StatusSuccess, resp.Status)
	assert.Equal(t, "hello!", resp.Reply)
	// 响应里的模型名优先
	assert.Equal(t, "gpt-4-0613", resp.ModelUsed)
	assert.Equal(t, 42, resp.Tokens)
	assert.Empty(t, resp.Error)

	// system → history → user
	require.Len(t, gotReq.Messages, 3)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "q2", gotReq.Messages[2].Content)
}

func TestCallMissingCredentialSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	t.Setenv("TEST_COMPAT_API_KEY", "")
	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi"})

	assert.Equal(t, llm.StatusError, resp.Status)
	assert.Contains(t, resp.Reply, "No API key provided")
	assert.Equal(t, "No API key", resp.Error)
	assert.Zero(t, hits.Load())
}

func TestCallCredentialFallsBackToEnv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-env", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			Choices: []providers.OpenAICompatChoice{
				{Message: providers.OpenAICompatMessage{Content: "ok"}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("TEST_COMPAT_API_KEY", "sk-env")
	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi"})

	assert.Equal(t, llm.StatusSuccess, resp.Status)
	// usage 缺省时 token 记 0
	assert.Zero(t, resp.Tokens)
	// 响应未带模型名，回落请求模型
	assert.Equal(t, "gpt-4", resp.ModelUsed)
}

func TestCallUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi", Credential: "bad"})

	assert.Equal(t, llm.StatusError, resp.Status)
	assert.Contains(t, resp.Reply, "Authentication failed")
	assert.Contains(t, resp.Error, "Incorrect API key")
}

func TestCallRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi", Credential: "k"})

	assert.Equal(t, llm.StatusError, resp.Status)
	assert.Contains(t, resp.Reply, "Rate limit exceeded")
}

func TestCallEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{})
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi", Credential: "k"})

	assert.Equal(t, llm.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "no choices")
}

func TestCallNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立即关掉，制造连接错误

	p := New(testConfig(srv.URL), nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "gpt-4", Prompt: "hi", Credential: "k"})

	require.NotNil(t, resp)
	assert.Equal(t, llm.StatusError, resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestCustomEndpointPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			Choices: []providers.OpenAICompatChoice{
				{Message: providers.OpenAICompatMessage{Content: "ok"}},
			},
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.EndpointPath = "/openai/v1/chat/completions"
	p := New(cfg, nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "llama3-8b-8192", Prompt: "hi", Credential: "k"})
	assert.Equal(t, llm.StatusSuccess, resp.Status)
}
