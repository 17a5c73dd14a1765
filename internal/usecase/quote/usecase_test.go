package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/session"
	"github.com/futig/garage-bot/internal/usecase/messages"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap/zaptest"
)

type fakePricing struct {
	result   *entity.PricingResult
	err      error
	requests []*entity.PricingRequest
}

func (f *fakePricing) Fetch(ctx context.Context, req *entity.PricingRequest) (*entity.PricingResult, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

type fakeDocuments struct {
	err  error
	refs []string
}

func (f *fakeDocuments) Fetch(ctx context.Context, ref string) (*entity.Attachment, error) {
	f.refs = append(f.refs, ref)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Attachment{Name: "kp.pdf", Data: []byte("%PDF")}, nil
}

type fixture struct {
	uc        *QuoteUsecase
	store     *session.Store
	pricing   *fakePricing
	documents *fakeDocuments
}

func newFixture(t *testing.T, variant string) *fixture {
	t.Helper()

	registry, err := flow.LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	f := &fixture{
		store:     session.NewStore(session.Config{FlowTTL: time.Hour, AssistantTTL: time.Hour, CleanupInterval: time.Minute}),
		pricing:   &fakePricing{result: &entity.PricingResult{Price: 1234567.4}},
		documents: &fakeDocuments{},
	}

	f.uc, err = NewUsecase(f.store, registry, f.pricing, f.documents, variant, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewUsecase: %v", err)
	}

	return f
}

func testContext(t *testing.T) context.Context {
	return ctxzap.ToContext(context.Background(), zaptest.NewLogger(t))
}

func (f *fixture) submitAll(t *testing.T, userID int64, answers ...string) []entity.Reply {
	t.Helper()
	var replies []entity.Reply
	for _, a := range answers {
		var err error
		replies, err = f.uc.Submit(testContext(t), userID, a)
		if err != nil {
			t.Fatalf("Submit(%q): %v", a, err)
		}
	}
	return replies
}

func texts(replies []entity.Reply) string {
	parts := make([]string, 0, len(replies))
	for _, r := range replies {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n---\n")
}

func TestEndToEndBasic(t *testing.T) {
	f := newFixture(t, "basic")
	ctx := testContext(t)

	replies, err := f.uc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "Длина гаража (м):") {
		t.Fatalf("first prompt = %q", texts(replies))
	}

	replies = f.submitAll(t, 1, "6", "3", "2.5", "3.2", "Двускатная", "Минеральная вата", "Нет")

	if len(f.pricing.requests) != 1 {
		t.Fatalf("pricing calls = %d, want 1", len(f.pricing.requests))
	}
	req := f.pricing.requests[0]
	if req.InputCells["C14"] != "6" || req.InputCells["C16"] != "3" {
		t.Fatalf("input cells = %v", req.InputCells)
	}
	if req.GenerateKP {
		t.Fatalf("document flag sent although not requested")
	}

	all := texts(replies)
	if !strings.Contains(all, messages.MsgCalculating) || !strings.Contains(all, "1 234 567 ₽") {
		t.Fatalf("replies = %q", all)
	}
	if len(f.documents.refs) != 0 {
		t.Fatalf("document fetched although not requested")
	}
	if _, ok := f.store.Flow(1); ok {
		t.Fatalf("session still exists after completion")
	}
}

func TestInvalidAnswerReprompts(t *testing.T) {
	f := newFixture(t, "basic")
	ctx := testContext(t)

	if _, err := f.uc.Start(ctx, 2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.submitAll(t, 2, "6", "3", "2.5", "3.2")

	before, _ := f.store.Flow(2)

	replies, err := f.uc.Submit(ctx, 2, "Плоская")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, messages.HintMenu) || !strings.Contains(replies[0].Text, "Тип крыши:") {
		t.Fatalf("re-prompt = %q", texts(replies))
	}
	if len(replies[0].Menu) == 0 {
		t.Fatalf("re-prompt lost the menu")
	}

	after, _ := f.store.Flow(2)
	if len(after.Values) != len(before.Values) {
		t.Fatalf("state changed on invalid answer")
	}
	if len(f.pricing.requests) != 0 {
		t.Fatalf("pricing called on invalid answer")
	}
}

func TestSubmitWithoutFlow(t *testing.T) {
	f := newFixture(t, "basic")

	if _, err := f.uc.Submit(testContext(t), 3, "6"); !errors.Is(err, entity.ErrNoActiveFlow) {
		t.Fatalf("error = %v, want ErrNoActiveFlow", err)
	}
}

func TestPricingFailuresClearSession(t *testing.T) {
	tests := map[string]error{
		"transport": fmt.Errorf("%w: connection refused", entity.ErrPricingTransport),
		"protocol":  fmt.Errorf("%w: HTTP 502", entity.ErrPricingProtocol),
		"contract":  fmt.Errorf("%w: field \"total\" absent", entity.ErrPricingContract),
	}

	for name, pricingErr := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "basic")
			f.pricing.result = nil
			f.pricing.err = pricingErr

			if _, err := f.uc.Start(testContext(t), 4); err != nil {
				t.Fatalf("Start: %v", err)
			}
			replies := f.submitAll(t, 4, "6", "3", "2.5", "3.2", "Двускатная", "PIR", "Да")

			last := replies[len(replies)-1]
			if last.Text != messages.ErrPricingFailed {
				t.Fatalf("last reply = %q, want generic failure", last.Text)
			}
			if len(last.Menu) == 0 {
				t.Fatalf("failure reply has no main menu")
			}
			if _, ok := f.store.Flow(4); ok {
				t.Fatalf("session survived pricing failure")
			}
			if len(f.documents.refs) != 0 {
				t.Fatalf("document fetched after pricing failure")
			}
		})
	}
}

func TestDocumentDelivery(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		f := newFixture(t, "basic")
		f.pricing.result = &entity.PricingResult{Price: 500000, DocumentRef: "https://x/kp.pdf"}

		f.uc.Start(testContext(t), 5)
		replies := f.submitAll(t, 5, "6", "3", "2.5", "3.2", "Двускатная", "PIR", "Да")

		if !f.pricing.requests[0].GenerateKP {
			t.Fatalf("generate_kp not sent")
		}
		if len(f.documents.refs) != 1 || f.documents.refs[0] != "https://x/kp.pdf" {
			t.Fatalf("document refs = %v", f.documents.refs)
		}
		last := replies[len(replies)-1]
		if last.Attachment == nil || last.Attachment.Name != "kp.pdf" {
			t.Fatalf("last reply = %+v, want attachment", last)
		}
	})

	t.Run("missing reference", func(t *testing.T) {
		f := newFixture(t, "basic")
		f.pricing.result = &entity.PricingResult{Price: 500000}

		f.uc.Start(testContext(t), 6)
		replies := f.submitAll(t, 6, "6", "3", "2.5", "3.2", "Двускатная", "PIR", "да")

		all := texts(replies)
		if !strings.Contains(all, "500 000 ₽") || !strings.Contains(all, messages.ErrNoDocument) {
			t.Fatalf("replies = %q", all)
		}
		if _, ok := f.store.Flow(6); ok {
			t.Fatalf("session survived completion")
		}
	})

	t.Run("download failure", func(t *testing.T) {
		f := newFixture(t, "basic")
		f.pricing.result = &entity.PricingResult{Price: 500000, DocumentRef: "https://x/kp.pdf"}
		f.documents.err = fmt.Errorf("%w: HTTP 404", entity.ErrDocument)

		f.uc.Start(testContext(t), 7)
		replies := f.submitAll(t, 7, "6", "3", "2.5", "3.2", "Двускатная", "PIR", "Да")

		if last := replies[len(replies)-1]; last.Text != messages.ErrDocumentFailed {
			t.Fatalf("last reply = %q", last.Text)
		}
	})
}

func TestStartRestartsFlow(t *testing.T) {
	f := newFixture(t, "garage")

	f.uc.Start(testContext(t), 8)
	f.submitAll(t, 8, "6", "3")

	if _, err := f.uc.Start(testContext(t), 8); err != nil {
		t.Fatalf("Start: %v", err)
	}
	fs, ok := f.store.Flow(8)
	if !ok || len(fs.Values) != 0 {
		t.Fatalf("restart kept answers: %+v", fs)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, "basic")
	ctx := testContext(t)

	replies, _ := f.uc.Cancel(ctx, 9)
	if replies[0].Text != messages.MsgNothingToCancel {
		t.Fatalf("cancel without flow = %q", replies[0].Text)
	}

	f.uc.Start(ctx, 9)
	replies, _ = f.uc.Cancel(ctx, 9)
	if replies[0].Text != messages.MsgCancelled {
		t.Fatalf("cancel = %q", replies[0].Text)
	}
	if _, ok := f.store.Flow(9); ok {
		t.Fatalf("session survived cancel")
	}
}

func TestNewUsecaseRejectsUnknownVariant(t *testing.T) {
	registry, err := flow.LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	store := session.NewStore(session.Config{FlowTTL: time.Hour, AssistantTTL: time.Hour, CleanupInterval: time.Minute})

	_, err = NewUsecase(store, registry, &fakePricing{}, &fakeDocuments{}, "shed", zaptest.NewLogger(t))
	if !errors.Is(err, entity.ErrUnknownVariant) {
		t.Fatalf("error = %v, want ErrUnknownVariant", err)
	}
}

type recordingNotifier struct {
	events   []*entity.QuoteCompletedData
	deadline bool
}

func (n *recordingNotifier) QuoteCompleted(ctx context.Context, data *entity.QuoteCompletedData) {
	_, n.deadline = ctx.Deadline()
	n.events = append(n.events, data)
}

func TestNotifierReceivesPricedDialogs(t *testing.T) {
	f := newFixture(t, "basic")
	n := &recordingNotifier{}
	f.uc.WithNotifier(n)

	if _, err := f.uc.Start(testContext(t), 8); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.submitAll(t, 8, "6", "3", "2,5", "3.2", "Двускатная", "PIR", "Нет")

	if len(n.events) != 1 {
		t.Fatalf("events = %d, want 1", len(n.events))
	}
	ev := n.events[0]
	if ev.UserID != 8 || ev.Variant != "basic" || ev.Price != 1234567.4 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Answers["height"] != "2.5" || ev.Answers["need_kp"] != "false" {
		t.Fatalf("answers = %v", ev.Answers)
	}
	if !n.deadline {
		t.Fatalf("notifier called without a deadline")
	}

	// Failed pricing is not reported
	f.pricing.result, f.pricing.err = nil, entity.ErrPricingTransport
	if _, err := f.uc.Start(testContext(t), 9); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.submitAll(t, 9, "6", "3", "2.5", "3.2", "Двускатная", "PIR", "Нет")
	if len(n.events) != 1 {
		t.Fatalf("failed dialog was reported")
	}
}
