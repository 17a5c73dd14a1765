package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/telegram/keyboard"
	"github.com/futig/garage-bot/internal/telegram/middleware"
	"github.com/futig/garage-bot/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MessageHandler turns an inbound message into the replies to send back
type MessageHandler interface {
	Handle(ctx context.Context, msg entity.Message) ([]entity.Reply, error)
}

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	client      API
	cfg         *config.TelegramConfig
	handler     MessageHandler
	sender      *Sender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	queues      []chan tgbotapi.Update // one ordered queue per worker
	mu          sync.RWMutex           // guards stopped against sends on closed queues
	stopped     bool
	stopChan    chan struct{}
	abort       chan struct{} // closed when the shutdown timeout expires
	abortOnce   sync.Once
	stopOnce    sync.Once
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Updates a worker buffers before dispatch blocks
const queueSize = 64

// New authorizes against the Bot API and creates the bot
func New(cfg *config.TelegramConfig, handler MessageHandler, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := newBot(api, cfg, handler, logger)
	b.api = api
	return b, nil
}

func newBot(client API, cfg *config.TelegramConfig, handler MessageHandler, logger *zap.Logger) *Bot {
	b := &Bot{
		client:   client,
		cfg:      cfg,
		handler:  handler,
		sender:   NewSender(client, keyboard.NewBuilder()),
		logger:   logger,
		queues:   make([]chan tgbotapi.Update, max(cfg.MaxConcurrentUsers, 1)),
		stopChan: make(chan struct{}),
		abort:    make(chan struct{}),
	}

	b.loggingMW = middleware.NewLoggingMiddleware(logger)
	b.recoveryMW = middleware.NewRecoveryMiddleware(logger, client)
	b.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		client,
	)

	for i := range b.queues {
		b.queues[i] = make(chan tgbotapi.Update, queueSize)
		b.wg.Add(1)
		go b.work(b.queues[i])
	}

	return b
}

// Start registers the update source and begins processing.
// In webhook mode updates arrive through WebhookHandler.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot", zap.Bool("webhook", b.cfg.UseWebhook))

	ctx, b.cancel = context.WithCancel(ctx)
	go b.rateLimitMW.Run(ctx)

	if b.cfg.UseWebhook {
		wh, err := tgbotapi.NewWebhook(b.cfg.WebhookURL)
		if err != nil {
			return fmt.Errorf("build webhook config: %w", err)
		}
		if _, err := b.api.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}

		b.logger.Info("telegram webhook registered", zap.String("url", b.cfg.WebhookURL))
		return nil
	}

	// A leftover webhook blocks getUpdates
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	go b.processUpdates(ctxzap.ToContext(ctx, b.logger), updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops receiving updates and waits until the queued ones are handled
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		if b.api != nil && !b.cfg.UseWebhook {
			b.api.StopReceivingUpdates()
		}

		b.mu.Lock()
		b.stopped = true
		for _, q := range b.queues {
			close(q)
		}
		b.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, dropping queued updates",
			zap.Duration("timeout", shutdownTimeout),
		)
		b.abortOnce.Do(func() { close(b.abort) })
		if b.cancel != nil {
			b.cancel()
		}
		return fmt.Errorf("shutdown timeout exceeded")
	}

	if b.cancel != nil {
		b.cancel()
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// WebhookHandler accepts updates pushed by Telegram
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.logger.Warn("invalid webhook update", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := b.dispatch(*update); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

var errStopped = errors.New("bot is stopping")

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			_ = b.dispatch(update)
		}
	}
}

// dispatch queues the update on its user's worker, so one user's updates keep arrival order
// while different users are handled in parallel
func (b *Bot) dispatch(update tgbotapi.Update) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		return errStopped
	}

	b.queues[b.shard(update)] <- update
	return nil
}

func (b *Bot) shard(update tgbotapi.Update) int {
	var id int64
	if user := update.SentFrom(); user != nil {
		id = user.ID
	} else if chat := update.FromChat(); chat != nil {
		id = chat.ID
	}
	if id < 0 {
		id = -id
	}
	return int(id % int64(len(b.queues)))
}

// work handles one queue in order until it is closed and drained
func (b *Bot) work(queue <-chan tgbotapi.Update) {
	defer b.wg.Done()

	for update := range queue {
		select {
		case <-b.abort:
			continue
		default:
		}
		b.handleUpdateWithMiddleware(update)
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.handleUpdate)
		})
	})
}

// handleUpdate runs the message through the handler and sends the replies
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	logger := b.logger.With(
		zap.Int64("user_id", message.From.ID),
		zap.Int64("chat_id", message.Chat.ID),
	)
	ctx := ctxzap.ToContext(context.Background(), logger)

	msg := entity.Message{
		ChatID: message.Chat.ID,
		UserID: message.From.ID,
		Text:   message.Text,
	}

	typing := StartTyping(ctx, b.client, msg.ChatID)
	replies, err := b.handler.Handle(ctx, msg)
	typing.Stop()

	if err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		replies = []entity.Reply{entity.TextReply(render.ClassifyError(err))}
	}

	if err := b.sender.SendReplies(ctx, msg.ChatID, replies); err != nil {
		ctxzap.Error(ctx, "failed to send replies", zap.Error(err))
	}
}
