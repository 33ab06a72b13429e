// =============================================================================
// Chimera 主入口
// =============================================================================
// 路由层的命令行前端：单次补全、模型清单、会话数据清理
//
// 使用方法:
//
//	chimera chat --model gpt-4 "Hello!"        # 单次补全
//	chimera chat --config chimera.yaml ...     # 指定配置文件
//	chimera models                             # 列出支持的模型
//	chimera cleanup --retention 30-days        # 清理过期会话数据
//	chimera version                            # 显示版本信息
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/chimera/config"
	"github.com/BaSui01/chimera/store"
)

// 版本信息（构建时注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "models":
		runModels(os.Args[2:])
	case "cleanup":
		runCleanup(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig 加载配置并构建日志器，任一步失败直接退出。
func loadConfig(configPath string) (*config.Config, *zap.Logger) {
	loader := config.NewLoader().
		WithValidator(func(c *config.Config) error { return c.Validate() })
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.BuildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

// =============================================================================
// chat 命令
// =============================================================================

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	model := fs.String("model", "echo", "Model identifier")
	credential := fs.String("api-key", "", "API key (falls back to provider env var)")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "chat requires a message argument")
		os.Exit(1)
	}
	message := strings.Join(fs.Args(), " ")

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync()

	d := cfg.BuildDispatcher(logger)
	resp := d.CompletePrompt(context.Background(), *model, message, "", *credential)

	fmt.Println(resp.Reply)
	if resp.Status != "success" {
		fmt.Fprintf(os.Stderr, "error: %s\n", resp.Error)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "[%s/%s, %d tokens]\n", resp.Provider, resp.ModelUsed, resp.Tokens)
}

// =============================================================================
// models 命令
// =============================================================================

func runModels(args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync()

	groups := cfg.BuildDispatcher(logger).SupportedModels()
	for _, provider := range []string{"openai", "anthropic", "google", "deepseek", "groq", "local", "echo"} {
		models := groups[provider]
		if len(models) == 0 {
			continue
		}
		fmt.Printf("%s:\n", provider)
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
	}
}

// =============================================================================
// cleanup 命令
// =============================================================================

func runCleanup(args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	retention := fs.String("retention", "", "Retention period override (e.g. 30-days)")
	fs.Parse(args)

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync()

	period := cfg.Store.Retention
	if *retention != "" {
		period = *retention
	}

	s, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	result, err := s.CleanupByRetention(context.Background(), period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d conversations, %d messages, %d memory links, %d orphan memories\n",
		result.Conversations, result.Messages, result.MemoryLinks, result.Memories)
}

// =============================================================================
// 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("Chimera %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`Chimera - multi-provider LLM routing

Usage:
  chimera <command> [options]

Commands:
  chat      Send a single message to a model
  models    List supported models grouped by provider
  cleanup   Remove expired conversation data
  version   Show version information
  help      Show this help message

Options for 'chat':
  --model <id>      Model identifier (default: echo)
  --api-key <key>   API key; falls back to the provider's env var
  --config <path>   Path to configuration file (YAML)

Options for 'cleanup':
  --retention <p>   Override retention period (7-days, 30-days, 90-days)
  --config <path>   Path to configuration file (YAML)

Examples:
  chimera chat --model gpt-4 "Explain goroutines"
  chimera chat "hello"
  chimera models
  chimera cleanup --retention 7-days
  chimera version`)
}
