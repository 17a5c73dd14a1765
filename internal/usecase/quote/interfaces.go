package quote

import (
	"context"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/session"
)

type PricingConnector interface {
	Fetch(ctx context.Context, req *entity.PricingRequest) (*entity.PricingResult, error)
}

type DocumentConnector interface {
	Fetch(ctx context.Context, ref string) (*entity.Attachment, error)
}

type VariantRegistry interface {
	Get(name string) (*flow.Variant, error)
}

type SessionStore interface {
	Flow(userID int64) (*session.FlowSession, bool)
	StartFlow(userID int64, variant string) *session.FlowSession
	SaveFlow(userID int64, fs *session.FlowSession)
	DeleteFlow(userID int64) bool
}

type Notifier interface {
	QuoteCompleted(ctx context.Context, data *entity.QuoteCompletedData)
}
