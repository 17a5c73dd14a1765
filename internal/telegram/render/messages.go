package render

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/usecase/messages"
)

// Dialog failures shared with the usecases
const (
	ErrGeneric         = messages.ErrGeneric
	ErrPricingFailed   = messages.ErrPricingFailed
	ErrNoDocument      = messages.ErrNoDocument
	ErrDocumentFailed  = messages.ErrDocumentFailed
	ErrAssistantFailed = messages.ErrAssistantFailed
)

// Transport failures
const (
	ErrNetworkIssue = `❌ Проблема с соединением. Попробуйте чуть позже.`
	ErrTimeout      = `❌ Операция заняла слишком много времени. Попробуйте ещё раз.`

	// Rate limit warnings, escalating
	WarnRateLimit1 = `⚠️ Слишком много запросов. Пожалуйста, подождите немного.`
	WarnRateLimit2 = `⚠️ Превышен лимит запросов. Подождите ~30 секунд перед следующей попыткой.`
	WarnRateLimit3 = `🛑 Вы отправляете запросы слишком часто. Пожалуйста, подождите минуту.`
)

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrPricingTransport),
		errors.Is(err, entity.ErrPricingProtocol),
		errors.Is(err, entity.ErrPricingContract):
		return ErrPricingFailed
	case errors.Is(err, entity.ErrDocumentMissing):
		return ErrNoDocument
	case errors.Is(err, entity.ErrDocument):
		return ErrDocumentFailed
	case errors.Is(err, entity.ErrAssistant):
		return ErrAssistantFailed
	}

	// Check for timeout errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return ErrNetworkIssue
	}

	if strings.Contains(err.Error(), "timeout") {
		return ErrTimeout
	}

	return ErrGeneric
}
