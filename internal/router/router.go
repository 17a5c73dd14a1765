// Package router sends each inbound message to the pricing dialog or the assistant.
package router

import (
	"context"
	"errors"
	"strings"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/pkg/logger"
	"github.com/futig/garage-bot/internal/session"
	"github.com/futig/garage-bot/internal/usecase/messages"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Decision is the mode a message is handled in
type Decision int

const (
	ToAssistant Decision = iota
	ToFlow
)

func (d Decision) String() string {
	if d == ToFlow {
		return "flow"
	}
	return "assistant"
}

const (
	cmdStart  = "start"
	cmdCancel = "cancel"
	cmdHelp   = "help"
)

type FlowUsecase interface {
	Start(ctx context.Context, userID int64) ([]entity.Reply, error)
	Submit(ctx context.Context, userID int64, text string) ([]entity.Reply, error)
	Cancel(ctx context.Context, userID int64) ([]entity.Reply, error)
}

type AssistantUsecase interface {
	Converse(ctx context.Context, userID int64, text string) ([]entity.Reply, error)
	ContactManager(ctx context.Context) []entity.Reply
}

type SessionStore interface {
	Lock(userID int64) (unlock func())
	Kind(userID int64) session.Kind
}

type Router struct {
	sessions  SessionStore
	flow      FlowUsecase
	assistant AssistantUsecase
	logger    *zap.Logger
}

func New(sessions SessionStore, flow FlowUsecase, assistant AssistantUsecase, logger *zap.Logger) *Router {
	return &Router{
		sessions:  sessions,
		flow:      flow,
		assistant: assistant,
		logger:    logger,
	}
}

// Route reports where a plain message from userID goes
func (r *Router) Route(userID int64) Decision {
	if r.sessions.Kind(userID) == session.KindFlow {
		return ToFlow
	}
	return ToAssistant
}

// Handle processes one message under the user's lock
func (r *Router) Handle(ctx context.Context, msg entity.Message) ([]entity.Reply, error) {
	unlock := r.sessions.Lock(msg.UserID)
	defer unlock()

	ctx = logger.WithUser(ctx, msg.UserID)
	text := strings.TrimSpace(msg.Text)

	if text == "" {
		return []entity.Reply{entity.TextReply(messages.ErrUnsupported)}, nil
	}

	if cmd, ok := command(text); ok {
		ctxzap.Info(ctx, "command received", zap.String("command", cmd))

		switch cmd {
		case cmdStart:
			return r.flow.Start(ctx, msg.UserID)
		case cmdCancel:
			return r.flow.Cancel(ctx, msg.UserID)
		default:
			return []entity.Reply{entity.MenuReply(messages.MsgHelp, messages.MainMenu()...)}, nil
		}
	}

	if text == messages.BtnCalculate {
		return r.flow.Start(ctx, msg.UserID)
	}

	decision := r.Route(msg.UserID)
	ctxzap.Debug(ctx, "message routed", zap.Stringer("decision", decision))

	if decision == ToFlow {
		replies, err := r.flow.Submit(ctx, msg.UserID, text)
		if !errors.Is(err, entity.ErrNoActiveFlow) {
			return replies, err
		}
		// expired between routing and submit
		ctxzap.Debug(ctx, "flow session vanished, falling back to assistant")
	}

	if text == messages.BtnManager {
		return r.assistant.ContactManager(ctx), nil
	}

	return r.assistant.Converse(ctx, msg.UserID, text)
}

// command extracts the bot command name from "/name@bot args"
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	name := text[1:]
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}

	cmd, _, _ := strings.Cut(name, "@")
	return strings.ToLower(cmd), cmd != ""
}
