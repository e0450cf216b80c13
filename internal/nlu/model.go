// Package nlu holds the language-model collaborators of the engine: the
// planner that turns a request into an ExecutionPlan, the argument
// extractor, the condition oracle and the fallback segmenter. All of them
// share one chat model built from the LLM configuration.
package nlu

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"yqhp/assistant-engine/internal/config"
)

// NewChatModel 根据配置创建 LLM 聊天模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ChatModel, error) {
	temperature := cfg.Temperature
	chatConfig := &openai.ChatModelConfig{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: &temperature,
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "openai":
			baseURL = "https://api.openai.com/v1"
		case "deepseek":
			baseURL = "https://api.deepseek.com/v1"
		case "azure":
			chatConfig.ByAzure = true
			if cfg.APIVersion == "" {
				chatConfig.APIVersion = "2024-06-01"
			} else {
				chatConfig.APIVersion = cfg.APIVersion
			}
		}
	}
	if baseURL != "" {
		chatConfig.BaseURL = baseURL
	}

	return openai.NewChatModel(ctx, chatConfig)
}

// generate runs one system+user exchange and returns the reply text.
func generate(ctx context.Context, m model.ChatModel, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
	resp, err := m.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
