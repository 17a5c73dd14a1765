// Package messages holds the user-facing texts of the pricing dialog and the assistant
package messages

import (
	"fmt"

	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/pricing"
)

const (
	// Buttons of the assistant keyboard
	BtnCalculate = "🧮 Рассчитать стоимость"
	BtnManager   = "📞 Связаться с менеджером"

	// Flow
	MsgFlowStart = `🏗 %s

Ответьте на несколько вопросов, и я рассчитаю стоимость. Отменить расчёт: /cancel

%s`
	MsgCalculating     = `⏳ Считаю стоимость...`
	MsgPrice           = "💰 Стоимость гаража:\n%s"
	MsgSendingDocument = `📄 Отправляю КП...`
	MsgInvalidAnswer   = "❌ %s\n\n%s"
	MsgCancelled       = `Расчёт отменён. Чтобы начать заново, нажмите «Рассчитать стоимость».`
	MsgNothingToCancel = `Сейчас нет активного расчёта.`

	MsgHelp = `🤖 Команды бота:

/start - рассчитать стоимость гаража
/cancel - отменить текущий расчёт
/help - показать эту справку

Можно просто написать вопрос: консультант компании «ГаражСтрой» ответит на него.`

	// Errors
	ErrGeneric         = `❌ Произошла ошибка. Попробуйте ещё раз или нажмите /start`
	ErrPricingFailed   = `❌ Не удалось рассчитать стоимость. Попробуйте позже или нажмите /start, чтобы начать заново.`
	ErrNoDocument      = `❌ API не вернул PDF`
	ErrDocumentFailed  = `❌ Не удалось отправить КП. Попробуйте позже или свяжитесь с менеджером.`
	ErrAssistantFailed = `Произошла ошибка. Попробуйте позже.`
	ErrUnsupported     = `Я понимаю только текстовые сообщения.`

	// Input hints
	HintNumber      = `Введите число, например 6 или 2,5.`
	HintPositive    = `Значение должно быть больше нуля.`
	HintNonNegative = `Значение не может быть отрицательным.`
	HintWhole       = `Введите целое число.`
	HintMenu        = `Выберите вариант из списка.`
	HintYesNo       = `Ответьте «Да» или «Нет».`
)

// RenderFlowStart introduces the dialog and asks the first question
func RenderFlowStart(title, prompt string) string {
	return fmt.Sprintf(MsgFlowStart, title, prompt)
}

// RenderPrice formats the final price message
func RenderPrice(price float64) string {
	return fmt.Sprintf(MsgPrice, pricing.FormatPrice(price))
}

// RenderInvalidAnswer combines the correction hint with the repeated question
func RenderInvalidAnswer(slot *flow.Slot, reason flow.Reason) string {
	return fmt.Sprintf(MsgInvalidAnswer, InputHint(slot, reason), slot.Prompt)
}

// InputHint explains what a rejected answer should look like
func InputHint(slot *flow.Slot, reason flow.Reason) string {
	switch reason {
	case flow.ReasonNotNumber:
		if slot != nil && slot.Kind == flow.KindInteger {
			return HintWhole
		}
		return HintNumber
	case flow.ReasonNotPositive:
		if slot != nil && slot.AllowZero {
			return HintNonNegative
		}
		return HintPositive
	case flow.ReasonNotWhole:
		return HintWhole
	case flow.ReasonNotInMenu:
		return HintMenu
	case flow.ReasonNotYesNo:
		return HintYesNo
	default:
		return HintMenu
	}
}

// MainMenu is the keyboard shown outside the pricing dialog
func MainMenu() []string {
	return []string{BtnCalculate, BtnManager}
}
