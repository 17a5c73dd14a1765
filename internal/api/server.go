package api

import (
	"net/http"
	"time"

	"github.com/futig/garage-bot/internal/api/middleware"
	"github.com/futig/garage-bot/internal/api/ops"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// WebhookPath receives Telegram updates in webhook mode
const WebhookPath = "/telegram/webhook"

// SetupRouter creates and configures the HTTP router.
// webhook is mounted at WebhookPath when not nil.
func SetupRouter(opsHandler *ops.Handler, webhook http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	ops.RegisterRoutes(r, opsHandler)

	if webhook != nil {
		r.Method(http.MethodPost, WebhookPath, webhook)
	}

	return r
}
