package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/chimera/llm"
)

func TestCallReturnsPlaceholder(t *testing.T) {
	p := New(nil)
	resp := p.Call(context.Background(), &llm.Request{Model: "local", Prompt: "hi"})

	require.NotNil(t, resp)
	assert.Equal(t, llm.StatusSuccess, resp.Status)
	assert.Equal(t, llm.ProviderLocal, resp.Provider)
	assert.Contains(t, resp.Reply, "[Local local]")
	assert.Contains(t, resp.Reply, "placeholder response")
	assert.Zero(t, resp.Tokens)
}
