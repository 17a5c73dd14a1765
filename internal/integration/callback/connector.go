package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/integration/common"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	pkghttp "github.com/futig/garage-bot/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts quote events to an external endpoint, such as a CRM intake
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
	now       func() time.Time
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// QuoteCompleted sends a quote completed event; failures are only logged
func (c *Connector) QuoteCompleted(ctx context.Context, data *entity.QuoteCompletedData) {
	err := c.Send(ctx, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeQuoteCompleted,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send quote completed callback", zap.Error(err))
	}
}

// Send posts the event, retrying network failures and 5xx responses
func (c *Connector) Send(ctx context.Context, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = c.now().UTC().Format(time.RFC3339)
	}

	requestID := uuid.NewString()

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("request_id", requestID),
		zap.String("timestamp", event.Timestamp),
	)

	_, err := pkgRetry.Do(ctx, &c.config.Retry, retryable, func() (struct{}, error) {
		return struct{}{}, c.connector.DoRequest(ctx, http.MethodPost, "", event, nil,
			pkghttp.WithHeader("X-Request-ID", requestID),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, error: %w", string(event.Event), err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("request_id", requestID),
	)
	return nil
}

func retryable(err error) bool {
	var netErr *pkghttp.NetworkError
	var httpErr *pkghttp.HTTPError
	switch {
	case errors.As(err, &netErr):
		return true
	case errors.As(err, &httpErr):
		return httpErr.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}
