package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredentialExplicitWins(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "from-env")
	assert.Equal(t, "explicit", ResolveCredential("explicit", "TEST_LLM_KEY"))
	assert.Equal(t, "explicit", ResolveCredential("  explicit  ", "TEST_LLM_KEY"))
}

func TestResolveCredentialEnvFallback(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "  from-env  ")
	assert.Equal(t, "from-env", ResolveCredential("", "TEST_LLM_KEY"))
	assert.Equal(t, "from-env", ResolveCredential("   ", "TEST_LLM_KEY"))
}

func TestResolveCredentialEmpty(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	assert.Empty(t, ResolveCredential("", "TEST_LLM_KEY"))
	assert.Empty(t, ResolveCredential("", ""))
}
