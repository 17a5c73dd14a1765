package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender posts a message to a chat
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler processes one update
type Handler func(tgbotapi.Update)

// origin returns the user and chat of a message update, ok is false for other update kinds
func origin(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return 0, 0, false
	}
	return update.Message.From.ID, update.Message.Chat.ID, true
}
