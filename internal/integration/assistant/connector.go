package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector calls the chat completion backend through eino
type Connector struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
	logger    *zap.Logger
}

// NewConnector builds an OpenAI-compatible chat model from configuration
func NewConnector(ctx context.Context, cfg config.AssistantConfig, logger *zap.Logger) (*Connector, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return NewConnectorWithModel(cm, logger), nil
}

// NewConnectorWithModel wraps an existing chat model
func NewConnectorWithModel(cm model.BaseChatModel, logger *zap.Logger) *Connector {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	return &Connector{
		chatModel: cm,
		template:  template,
		logger:    logger,
	}
}

// Reply asks the model to answer query in the given persona with prior turns as context
func (c *Connector) Reply(ctx context.Context, persona string, history []entity.Turn, query string) (string, error) {
	messages, err := c.template.Format(ctx, map[string]any{
		"system":  persona,
		"history": toMessages(history),
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: build prompt: %w", entity.ErrAssistant, err)
	}

	ctxzap.Debug(ctx, "calling assistant model", zap.Int("messages", len(messages)))

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrAssistant, err)
	}

	content := ""
	if resp != nil {
		content = strings.TrimSpace(resp.Content)
	}
	if content == "" {
		return "", fmt.Errorf("%w: %w", entity.ErrAssistant, entity.ErrEmptyAssistant)
	}

	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		ctxzap.Debug(ctx, "assistant usage",
			zap.Int("prompt_tokens", resp.ResponseMeta.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.ResponseMeta.Usage.CompletionTokens),
		)
	}

	return content, nil
}

func toMessages(turns []entity.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case entity.RoleUser:
			out = append(out, schema.UserMessage(t.Content))
		case entity.RoleAssistant:
			out = append(out, schema.AssistantMessage(t.Content, nil))
		}
	}
	return out
}
