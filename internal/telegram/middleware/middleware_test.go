package middleware

import (
	"sync"
	"testing"
	"time"

	"github.com/futig/garage-bot/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(60, 2, zaptest.NewLogger(t), sender)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	handled := 0
	next := func(tgbotapi.Update) { handled++ }

	for range 4 {
		rl.Handle(textUpdate(1, "hi"), next)
	}
	if handled != 2 {
		t.Fatalf("handled %d updates, want burst of 2", handled)
	}
	if len(sender.sent) != 1 || sender.sent[0] != render.WarnRateLimit1 {
		t.Fatalf("warnings = %v, want a single first warning", sender.sent)
	}

	// Another user has its own bucket
	rl.Handle(textUpdate(2, "hi"), next)
	if handled != 3 {
		t.Fatalf("second user was limited")
	}

	clock = clock.Add(time.Second)
	rl.Handle(textUpdate(1, "hi"), next)
	if handled != 4 {
		t.Fatalf("token not refilled after a second")
	}
}

func TestRateLimiterEscalatesWarnings(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(1, 1, zaptest.NewLogger(t), sender)
	rl.refillRate = 0

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	next := func(tgbotapi.Update) {}
	rl.Handle(textUpdate(1, "hi"), next)
	for range 3 {
		clock = clock.Add(31 * time.Second)
		rl.Handle(textUpdate(1, "hi"), next)
	}

	want := []string{render.WarnRateLimit1, render.WarnRateLimit2, render.WarnRateLimit3}
	if len(sender.sent) != len(want) {
		t.Fatalf("warnings = %v", sender.sent)
	}
	for i := range want {
		if sender.sent[i] != want[i] {
			t.Fatalf("warning %d = %q, want %q", i, sender.sent[i], want[i])
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiterMiddleware(30, 5, zaptest.NewLogger(t), &recordingSender{})

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.Handle(textUpdate(1, "hi"), func(tgbotapi.Update) {})
	clock = clock.Add(2 * time.Hour)
	rl.cleanup()

	if len(rl.limits) != 0 {
		t.Fatalf("inactive user not removed")
	}
}

func TestRateLimiterPassesNonMessageUpdates(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, zaptest.NewLogger(t), &recordingSender{})

	calls := 0
	for range 3 {
		rl.Handle(tgbotapi.Update{UpdateID: 7}, func(tgbotapi.Update) { calls++ })
	}
	if calls != 3 {
		t.Fatalf("non-message updates were limited")
	}
}

func TestRecoveryApologizes(t *testing.T) {
	sender := &recordingSender{}
	m := NewRecoveryMiddleware(zaptest.NewLogger(t), sender)

	m.Handle(textUpdate(5, "boom"), func(tgbotapi.Update) { panic("boom") })

	if len(sender.sent) != 1 || sender.sent[0] != render.ErrGeneric {
		t.Fatalf("sent = %v, want generic error", sender.sent)
	}
}

func TestUpdateType(t *testing.T) {
	command := textUpdate(1, "/start")
	command.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	voice := textUpdate(1, "")
	voice.Message.Voice = &tgbotapi.Voice{}

	cases := map[string]tgbotapi.Update{
		"command": command,
		"text":    textUpdate(1, "hello"),
		"voice":   voice,
		"other":   {UpdateID: 1},
	}
	for want, update := range cases {
		if got := updateType(update); got != want {
			t.Fatalf("updateType = %q, want %q", got, want)
		}
	}
}
