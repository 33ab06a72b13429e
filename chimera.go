// Package chimera provides a top-level convenience entry point for routing
// chat turns to LLM providers with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/chimera"
//
//	d := chimera.NewDispatcher(nil)
//	resp := d.CompletePrompt(ctx, "gpt-4", "Hello!", "", "")
//
// This is a thin wrapper around the config and llm packages; use it when
// defaults are enough and you prefer the shorter import path.
package chimera

import (
	"go.uber.org/zap"

	"github.com/BaSui01/chimera/config"
	"github.com/BaSui01/chimera/llm"
)

// NewDispatcher builds a dispatcher with the default registry and every
// provider adapter wired in. Credentials fall back to each provider's
// environment variable. A nil logger disables logging.
func NewDispatcher(logger *zap.Logger) *llm.Dispatcher {
	return config.DefaultConfig().BuildDispatcher(logger)
}

// NewDispatcherFromConfig loads a YAML config file (missing file falls back
// to defaults, environment variables override) and builds a dispatcher.
func NewDispatcherFromConfig(path string, logger *zap.Logger) (*llm.Dispatcher, error) {
	cfg, err := config.NewLoader().
		WithConfigPath(path).
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		return nil, err
	}
	return cfg.BuildDispatcher(logger), nil
}
