package callback

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap/zaptest"
)

func newTestConnector(t *testing.T, url string, attempts uint) *Connector {
	t.Helper()
	cfg := config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			Token:          "crm-token",
			RequestTimeout: 2 * time.Second,
		},
		Retry: pkgRetry.RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	c := NewConnector(cfg, zaptest.NewLogger(t))
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("MSK", 3*3600)) }
	return c
}

func TestQuoteCompleted(t *testing.T) {
	var got struct {
		Event     string                    `json:"event"`
		Timestamp string                    `json:"timestamp"`
		Data      entity.QuoteCompletedData `json:"data"`
	}
	var auth, requestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		body, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(body, &got); err != nil {
			t.Errorf("decode callback: %v", err)
		}
	}))
	defer srv.Close()

	ctx := ctxzap.ToContext(context.Background(), zaptest.NewLogger(t))
	newTestConnector(t, srv.URL, 1).QuoteCompleted(ctx, &entity.QuoteCompletedData{
		UserID:  42,
		Variant: "basic",
		Answers: map[string]string{"length": "6"},
		Price:   783000,
	})

	if got.Event != "quoteCompleted" || got.Timestamp != "2026-03-01T06:30:00Z" {
		t.Fatalf("event = %q at %q", got.Event, got.Timestamp)
	}
	if got.Data.UserID != 42 || got.Data.Answers["length"] != "6" || got.Data.Price != 783000 {
		t.Fatalf("data = %+v", got.Data)
	}
	if auth != "Bearer crm-token" || requestID == "" {
		t.Fatalf("headers: auth=%q request_id=%q", auth, requestID)
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	ctx := ctxzap.ToContext(context.Background(), zaptest.NewLogger(t))
	err := newTestConnector(t, srv.URL, 3).Send(ctx, &entity.CallbackEvent{Event: entity.CallbackEventTypeQuoteCompleted})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ctx := ctxzap.ToContext(context.Background(), zaptest.NewLogger(t))
	if err := newTestConnector(t, srv.URL, 3).Send(ctx, &entity.CallbackEvent{}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}
