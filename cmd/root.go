// Package cmd 提供 assistant-engine CLI 的命令实现
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/config"
	"yqhp/assistant-engine/internal/nlu"
	"yqhp/assistant-engine/pkg/logger"
)

const (
	// Version 是当前版本号
	Version = "0.1.0"
	// Banner 是启动时显示的 ASCII 艺术
	Banner = `
     _    _____   Assistant Engine %s
    / \  | ____|
   / _ \ |  _|
  / ___ \| |___
 /_/   \_\_____|
`
)

var (
	// 全局配置
	cfgFile string
	debug   bool
)

// rootCmd 是根命令
var rootCmd = &cobra.Command{
	Use:   "assistant-engine",
	Short: "个人助理任务编排引擎",
	Long: `assistant-engine orchestrates personal-assistant task execution:
it turns a natural-language request into an execution plan, runs the plan
with the right strategy, and gates sensitive actions behind confirmation.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.SetLevelFromString("debug")
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(fmt.Sprintf(Banner, Version) + "\n")
}

// loadConfig 加载配置并应用日志级别
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if !debug {
		logger.SetLevelFromString(cfg.Logging.Level)
	}
	return cfg, nil
}

// buildInvoker 根据配置选择能力调用后端
func buildInvoker(cfg *config.Config) (capability.Invoker, error) {
	switch cfg.Invoker.Backend {
	case "memory":
		return capability.NewMemoryInvoker(), nil
	case "http":
		return capability.NewHTTPInvoker(cfg.Invoker.Endpoint, cfg.Invoker.Timeout), nil
	case "mcp":
		return capability.NewMCPInvoker(cfg.Invoker.Endpoint), nil
	case "script":
		return capability.NewScriptInvoker(cfg.Invoker.ScriptDir)
	default:
		return nil, fmt.Errorf("unknown invoker backend: %q", cfg.Invoker.Backend)
	}
}

// nluComponents 持有共享同一个聊天模型的语言组件
type nluComponents struct {
	planner   *nlu.Planner
	extractor *nlu.Extractor
	oracle    *nlu.Oracle
	segmenter *nlu.Segmenter
}

// buildNLU 创建语言模型组件；未配置 API key 时返回 nil（离线模式）
func buildNLU(ctx context.Context, cfg *config.Config, caps *capability.Registry) (*nluComponents, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}

	chatModel, err := nlu.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return &nluComponents{
		planner:   nlu.NewPlanner(chatModel, caps),
		extractor: nlu.NewExtractor(chatModel, caps),
		oracle:    nlu.NewOracle(chatModel),
		segmenter: nlu.NewSegmenter(chatModel),
	}, nil
}
