package ops

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/pkg/logger"
	"github.com/futig/garage-bot/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxAnswersBody = 64 << 10

type Handler struct {
	sessions SessionCounter
	variants VariantRegistry
	active   string
	started  time.Time
}

func NewHandler(sessions SessionCounter, variants VariantRegistry, active string) *Handler {
	return &Handler{
		sessions: sessions,
		variants: variants,
		active:   active,
		started:  time.Now(),
	}
}

type sessionCounts struct {
	Flow      int `json:"flow"`
	Assistant int `json:"assistant"`
}

type healthResponse struct {
	Status        string        `json:"status"`
	Variant       string        `json:"variant"`
	Sessions      sessionCounts `json:"sessions"`
	UptimeSeconds int64         `json:"uptime_seconds"`
}

type variantResponse struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Slots  int    `json:"slots"`
	Active bool   `json:"active"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	flows, assistants := h.sessions.Counts()

	response.Success(w, healthResponse{
		Status:        "healthy",
		Variant:       h.active,
		Sessions:      sessionCounts{Flow: flows, Assistant: assistants},
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// ListVariants handles GET /variants
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	names := h.variants.Names()
	out := make([]variantResponse, 0, len(names))

	for _, name := range names {
		v, err := h.variants.Get(name)
		if err != nil {
			continue
		}
		out = append(out, variantResponse{
			Name:   v.Name,
			Title:  v.Title,
			Slots:  len(v.Slots),
			Active: v.Name == h.active,
		})
	}

	response.Success(w, out)
}

// BuildPayload handles POST /variants/{name}/payload.
// The body maps slot keys to raw answers; the response is the pricing engine request.
func (h *Handler) BuildPayload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "BuildPayload")
	name := chi.URLParam(r, "name")

	v, err := h.variants.Get(name)
	if err != nil {
		response.Error(w, http.StatusNotFound, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxAnswersBody))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var answers map[string]string
	if err := sonic.Unmarshal(body, &answers); err != nil {
		response.Error(w, http.StatusBadRequest, "body must be a JSON object of slot answers")
		return
	}

	values, err := v.Replay(answers)
	if err != nil {
		ctxzap.Info(ctx, "answers rejected", zap.String("variant", name), zap.Error(err))
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, entity.ErrInvalidInput) && !errors.Is(err, flow.ErrMissingAnswer) {
			status = http.StatusBadRequest
		}
		response.Error(w, status, err.Error())
		return
	}

	req, err := v.Payload(values)
	if err != nil {
		ctxzap.Error(ctx, "failed to build payload", zap.String("variant", name), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(w, req)
}
