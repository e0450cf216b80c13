package cmd

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/engine"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/types"
)

var runSessionID string

// runCmd 单次执行一条请求（不启动服务）
var runCmd = &cobra.Command{
	Use:   "run [request text]",
	Short: "Plan and execute one request from the command line",
	Long: `Runs one request end to end and prints the step results as JSON.
Without an LLM API key the planner is unavailable and the request is run
as a single task against the in-memory invoker, which is useful for
smoke-testing capability wiring.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")

		caps := capability.Builtins()
		invoker, err := buildInvoker(cfg)
		if err != nil {
			return err
		}

		comps, err := buildNLU(cmd.Context(), cfg, caps)
		if err != nil {
			return err
		}

		sessions := session.NewStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
		defer sessions.Close()

		opts := engine.Options{
			Capabilities: caps,
			Invoker:      invoker,
			Sessions:     sessions,
			MaxParallel:  cfg.Engine.MaxParallel,
		}
		if comps != nil {
			opts.Extractor = comps.extractor
			opts.Oracle = comps.oracle
			opts.FallbackSegmenter = comps.segmenter
		}
		eng := engine.New(opts)

		var plan *types.ExecutionPlan
		if comps != nil {
			plan, err = comps.planner.Plan(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
		} else {
			// 离线模式：整条请求作为一个 query_model 任务执行
			plan = &types.ExecutionPlan{
				Pattern:     types.PatternSingle,
				RequestText: text,
				Tasks:       []types.Task{{Capability: "query_model", Utterance: text}},
			}
		}

		results := eng.Run(cmd.Context(), runSessionID, plan)
		fmt.Println(oj.JSON(results, 2))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runSessionID, "session", "cli", "session id for dedup and confirmation state")
	rootCmd.AddCommand(runCmd)
}
