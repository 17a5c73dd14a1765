package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram drops the typing action after 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier sends periodic "typing" actions while a reply is being prepared
type TypingNotifier struct {
	api    API
	chatID int64
	done   chan struct{}
	exited chan struct{}
}

// StartTyping sends the first action right away and keeps refreshing it until Stop
func StartTyping(ctx context.Context, api API, chatID int64) *TypingNotifier {
	t := &TypingNotifier{
		api:    api,
		chatID: chatID,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	t.notify(ctx)

	go func() {
		defer close(t.exited)

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.notify(ctx)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

// Stop ends the indicator and waits for the refresh loop to exit
func (t *TypingNotifier) Stop() {
	close(t.done)
	<-t.exited
}

func (t *TypingNotifier) notify(ctx context.Context) {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.api.Request(action); err != nil {
		ctxzap.Warn(ctx, "failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
