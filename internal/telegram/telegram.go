package telegram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/telegram/bot"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
	WebhookHandler() http.HandlerFunc
}

// NewBot initializes the telegram bot on top of the message router
func NewBot(cfg *config.TelegramConfig, handler bot.MessageHandler, logger *zap.Logger) (Bot, error) {
	b, err := bot.New(cfg, handler, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully",
		zap.Bool("webhook", cfg.UseWebhook),
		zap.Int("max_concurrent_users", cfg.MaxConcurrentUsers),
	)

	return b, nil
}
