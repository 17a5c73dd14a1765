package keyboard

import (
	"github.com/futig/garage-bot/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Options longer than this get a row of their own
const maxPairedLen = 16

// Builder creates reply keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Markup returns the reply markup for a reply, nil keeps the current keyboard
func (b *Builder) Markup(reply entity.Reply) any {
	switch {
	case len(reply.Menu) > 0:
		return b.Menu(reply.Menu)
	case reply.RemoveMenu:
		return b.Remove()
	default:
		return nil
	}
}

// Menu lays out options two per row when they are short, one per row otherwise
func (b *Builder) Menu(options []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	for i := 0; i < len(options); i++ {
		current := options[i]
		if i+1 < len(options) && short(current) && short(options[i+1]) {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(current),
				tgbotapi.NewKeyboardButton(options[i+1]),
			))
			i++
			continue
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(current)))
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// Remove hides the reply keyboard
func (b *Builder) Remove() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}

func short(s string) bool {
	return len([]rune(s)) <= maxPairedLen
}
