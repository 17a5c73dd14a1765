package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/pkg/logger"
	"github.com/futig/garage-bot/internal/usecase/messages"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QuoteUsecase runs the pricing dialog. Callers hold the user's session lock.
type QuoteUsecase struct {
	sessions  SessionStore
	variants  VariantRegistry
	pricing   PricingConnector
	documents DocumentConnector
	notifier  Notifier
	variant   string
	logger    *zap.Logger
}

// Bounds the delay a slow callback endpoint adds to the price reply
const notifyTimeout = 10 * time.Second

// NewUsecase creates a quote usecase that starts new dialogs with the named variant
func NewUsecase(
	sessions SessionStore,
	variants VariantRegistry,
	pricing PricingConnector,
	documents DocumentConnector,
	variant string,
	logger *zap.Logger,
) (*QuoteUsecase, error) {
	if _, err := variants.Get(variant); err != nil {
		return nil, err
	}

	return &QuoteUsecase{
		sessions:  sessions,
		variants:  variants,
		pricing:   pricing,
		documents: documents,
		variant:   variant,
		logger:    logger,
	}, nil
}

// WithNotifier reports every priced dialog to n
func (uc *QuoteUsecase) WithNotifier(n Notifier) *QuoteUsecase {
	uc.notifier = n
	return uc
}

// Start replaces any session of the user with an empty dialog and asks the first question
func (uc *QuoteUsecase) Start(ctx context.Context, userID int64) ([]entity.Reply, error) {
	v, err := uc.variants.Get(uc.variant)
	if err != nil {
		return nil, err
	}

	ctx = logger.AddFields(logger.WithAction(ctx, "quote_start"), zap.String("variant", v.Name))

	fs := uc.sessions.StartFlow(userID, v.Name)

	first, ok := v.Next(fs.Values)
	if !ok {
		return nil, fmt.Errorf("variant %s has no applicable slots", v.Name)
	}

	ctxzap.Info(ctx, "pricing dialog started")

	return []entity.Reply{
		promptReply(messages.RenderFlowStart(v.Title, first.Prompt), first),
	}, nil
}

// Submit feeds one answer into the user's dialog.
// Invalid answers re-ask the same question; the last answer triggers pricing.
func (uc *QuoteUsecase) Submit(ctx context.Context, userID int64, text string) ([]entity.Reply, error) {
	fs, ok := uc.sessions.Flow(userID)
	if !ok {
		return nil, entity.ErrNoActiveFlow
	}

	ctx = logger.AddFields(logger.WithAction(ctx, "quote_submit"), zap.String("variant", fs.Variant))

	v, err := uc.variants.Get(fs.Variant)
	if err != nil {
		ctxzap.Error(ctx, "flow variant disappeared, dropping session", zap.Error(err))
		uc.sessions.DeleteFlow(userID)
		return []entity.Reply{menuReply(messages.ErrGeneric, messages.MainMenu())}, nil
	}

	values, next, err := v.Apply(fs.Values, text)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrFlowComplete):
		// a stored session is never complete; price it rather than leave the user stuck
		return uc.complete(ctx, userID, v, fs.Values), nil
	default:
		var inputErr *flow.InputError
		if errors.As(err, &inputErr) && next != nil {
			ctxzap.Debug(ctx, "answer rejected",
				zap.String("slot", inputErr.Slot),
				zap.String("reason", string(inputErr.Reason)),
			)
			return []entity.Reply{
				promptReply(messages.RenderInvalidAnswer(next, inputErr.Reason), next),
			}, nil
		}
		return nil, err
	}

	if next != nil {
		fs.Values = values
		uc.sessions.SaveFlow(userID, fs)
		return []entity.Reply{promptReply(next.Prompt, next)}, nil
	}

	return uc.complete(ctx, userID, v, values), nil
}

// Cancel abandons the user's dialog
func (uc *QuoteUsecase) Cancel(ctx context.Context, userID int64) ([]entity.Reply, error) {
	if !uc.sessions.DeleteFlow(userID) {
		return []entity.Reply{menuReply(messages.MsgNothingToCancel, messages.MainMenu())}, nil
	}

	ctxzap.Info(logger.WithAction(ctx, "quote_cancel"), "pricing dialog cancelled")

	return []entity.Reply{menuReply(messages.MsgCancelled, messages.MainMenu())}, nil
}

// complete prices a finished dialog. The session is removed whatever the outcome.
func (uc *QuoteUsecase) complete(ctx context.Context, userID int64, v *flow.Variant, values flow.Values) []entity.Reply {
	defer uc.sessions.DeleteFlow(userID)

	replies := []entity.Reply{{Text: messages.MsgCalculating, RemoveMenu: true}}

	req, err := v.Payload(values)
	if err != nil {
		ctxzap.Error(ctx, "failed to build pricing request", zap.Error(err))
		return withMainMenu(append(replies, entity.TextReply(messages.ErrPricingFailed)))
	}

	result, err := uc.pricing.Fetch(ctx, req)
	if err != nil {
		logPricingError(ctx, err)
		return withMainMenu(append(replies, entity.TextReply(messages.ErrPricingFailed)))
	}

	replies = append(replies, entity.TextReply(messages.RenderPrice(result.Price)))
	uc.notify(ctx, userID, v, values, result)

	if req.GenerateKP {
		replies = append(replies, uc.document(ctx, result)...)
	}

	ctxzap.Info(ctx, "pricing dialog completed",
		zap.Float64("price", result.Price),
		zap.Bool("generate_kp", req.GenerateKP),
	)

	return withMainMenu(replies)
}

func (uc *QuoteUsecase) notify(ctx context.Context, userID int64, v *flow.Variant, values flow.Values, result *entity.PricingResult) {
	if uc.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	uc.notifier.QuoteCompleted(ctx, &entity.QuoteCompletedData{
		UserID:      userID,
		Variant:     v.Name,
		Answers:     values.Strings(),
		Price:       result.Price,
		DocumentRef: result.DocumentRef,
	})
}

func (uc *QuoteUsecase) document(ctx context.Context, result *entity.PricingResult) []entity.Reply {
	if !result.HasDocument() {
		ctxzap.Warn(ctx, "document requested but not returned", zap.Error(entity.ErrDocumentMissing))
		return []entity.Reply{entity.TextReply(messages.ErrNoDocument)}
	}

	attachment, err := uc.documents.Fetch(ctx, result.DocumentRef)
	if err != nil {
		ctxzap.Error(ctx, "failed to deliver document", zap.Error(err))
		return []entity.Reply{entity.TextReply(messages.ErrDocumentFailed)}
	}

	return []entity.Reply{
		entity.TextReply(messages.MsgSendingDocument),
		{Attachment: attachment},
	}
}

func logPricingError(ctx context.Context, err error) {
	kind := "protocol"
	switch {
	case errors.Is(err, entity.ErrPricingTransport):
		kind = "transport"
	case errors.Is(err, entity.ErrPricingContract):
		kind = "contract"
	}
	ctxzap.Error(ctx, "pricing failed", zap.String("kind", kind), zap.Error(err))
}

func promptReply(text string, slot *flow.Slot) entity.Reply {
	menu := slot.Menu()
	if len(menu) == 0 {
		return entity.Reply{Text: text, RemoveMenu: true}
	}
	return entity.MenuReply(text, menu...)
}

func menuReply(text string, menu []string) entity.Reply {
	return entity.MenuReply(text, menu...)
}

// withMainMenu puts the main keyboard on the last reply
func withMainMenu(replies []entity.Reply) []entity.Reply {
	last := &replies[len(replies)-1]
	last.Menu = messages.MainMenu()
	last.RemoveMenu = false
	return replies
}
