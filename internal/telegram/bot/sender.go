package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/garage-bot/internal/entity"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	"github.com/futig/garage-bot/internal/telegram/keyboard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the part of the Bot API used to talk to chats
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var sendRetry = &pkgRetry.RetryConfig{
	Attempts: 3,
	Delay:    500 * time.Millisecond,
	MaxDelay: 3 * time.Second,
}

// Sender delivers replies to a chat
type Sender struct {
	api      API
	keyboard *keyboard.Builder
	retry    *pkgRetry.RetryConfig
}

// NewSender creates a sender that retries transient Bot API failures
func NewSender(api API, kb *keyboard.Builder) *Sender {
	return &Sender{
		api:      api,
		keyboard: kb,
		retry:    sendRetry,
	}
}

// SendReplies sends replies in order and stops at the first failure
func (s *Sender) SendReplies(ctx context.Context, chatID int64, replies []entity.Reply) error {
	for i, reply := range replies {
		if err := s.send(ctx, s.chattable(chatID, reply)); err != nil {
			return fmt.Errorf("send reply %d of %d: %w", i+1, len(replies), err)
		}
	}
	return nil
}

// SendText sends a plain message without touching the keyboard
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (s *Sender) chattable(chatID int64, reply entity.Reply) tgbotapi.Chattable {
	markup := s.keyboard.Markup(reply)

	if reply.Attachment != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  reply.Attachment.Name,
			Bytes: reply.Attachment.Data,
		})
		doc.Caption = reply.Attachment.Caption
		if doc.Caption == "" {
			doc.Caption = reply.Text
		}
		if markup != nil {
			doc.ReplyMarkup = markup
		}
		return doc
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

func (s *Sender) send(ctx context.Context, c tgbotapi.Chattable) error {
	attempt := 0
	_, err := pkgRetry.Do(ctx, s.retry, retryableSend, func() (tgbotapi.Message, error) {
		attempt++
		msg, err := s.api.Send(c)
		if err != nil && attempt < int(s.retry.Attempts) && retryableSend(err) {
			ctxzap.Warn(ctx, "failed to send message, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
		}
		return msg, err
	})
	if err != nil {
		return err
	}

	if attempt > 1 {
		ctxzap.Info(ctx, "message sent after retry", zap.Int("attempt", attempt))
	}
	return nil
}

// retryableSend retries network failures, flood control and server errors
func retryableSend(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
