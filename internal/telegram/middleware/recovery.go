package middleware

import (
	"runtime/debug"

	"github.com/futig/garage-bot/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger *zap.Logger
	sender Sender
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(logger *zap.Logger, sender Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
		sender: sender,
	}
}

// Handle recovers from panics and apologizes to the user
func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next Handler) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered in telegram handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.Int("update_id", update.UpdateID),
			)

			_, chatID, ok := origin(update)
			if !ok {
				return
			}

			if _, err := m.sender.Send(tgbotapi.NewMessage(chatID, render.ErrGeneric)); err != nil {
				m.logger.Error("failed to send error message",
					zap.Error(err),
					zap.Int64("chat_id", chatID),
				)
			}
		}
	}()

	next(update)
}
