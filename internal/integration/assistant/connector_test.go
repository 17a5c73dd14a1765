package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap/zaptest"
)

type fakeChatModel struct {
	reply    *schema.Message
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func testContext(t *testing.T) context.Context {
	return ctxzap.ToContext(context.Background(), zaptest.NewLogger(t))
}

func TestReplyBuildsPrompt(t *testing.T) {
	cm := &fakeChatModel{reply: schema.AssistantMessage("  Добрый день!  ", nil)}
	c := NewConnectorWithModel(cm, zaptest.NewLogger(t))

	history := []entity.Turn{
		{Role: entity.RoleUser, Content: "Привет"},
		{Role: entity.RoleAssistant, Content: "Здравствуйте"},
	}

	got, err := c.Reply(testContext(t), "Вы консультант {компании}", history, "Сколько стоит гараж?")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "Добрый день!" {
		t.Fatalf("reply = %q", got)
	}

	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User}
	if len(cm.received) != len(wantRoles) {
		t.Fatalf("model received %d messages, want %d", len(cm.received), len(wantRoles))
	}
	for i, role := range wantRoles {
		if cm.received[i].Role != role {
			t.Fatalf("message %d role = %s, want %s", i, cm.received[i].Role, role)
		}
	}
	if cm.received[0].Content != "Вы консультант {компании}" {
		t.Fatalf("persona altered: %q", cm.received[0].Content)
	}
	if cm.received[3].Content != "Сколько стоит гараж?" {
		t.Fatalf("query = %q", cm.received[3].Content)
	}
}

func TestReplyErrors(t *testing.T) {
	tests := map[string]*fakeChatModel{
		"backend failure": {err: errors.New("429 too many requests")},
		"empty reply":     {reply: schema.AssistantMessage("   ", nil)},
		"nil reply":       {},
	}

	for name, cm := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewConnectorWithModel(cm, zaptest.NewLogger(t))
			if _, err := c.Reply(testContext(t), "persona", nil, "вопрос"); !errors.Is(err, entity.ErrAssistant) {
				t.Fatalf("error = %v, want ErrAssistant", err)
			}
		})
	}
}
