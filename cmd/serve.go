package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yqhp/assistant-engine/api/rest"
	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/engine"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/logger"
)

// serveCmd 启动 REST 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant engine REST server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

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
		var planner rest.Planner
		if comps != nil {
			opts.Extractor = comps.extractor
			opts.Oracle = comps.oracle
			opts.FallbackSegmenter = comps.segmenter
			planner = comps.planner
		} else {
			logger.Warn("no LLM API key configured, planner disabled; submit plans directly")
		}

		eng := engine.New(opts)

		srv := rest.NewServer(eng, planner, sessions, &rest.Config{
			Address:      cfg.Server.Address,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			EnableCORS:   cfg.Server.EnableCORS,
		})

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf(Banner, Version)
			logger.Info("REST server listening on %s", cfg.Server.Address)
			errCh <- srv.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logger.Info("received %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
