package assistant

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/pkg/logger"
	"github.com/futig/garage-bot/internal/usecase/messages"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

//go:embed persona.txt
var defaultPersona string

// Config holds the conversation settings
type Config struct {
	Persona        string
	ContextTurns   int // Turns sent to the model, the new question included
	ManagerContact string
}

// AssistantUsecase answers free-form questions outside the pricing dialog.
// Callers hold the user's session lock.
type AssistantUsecase struct {
	sessions  SessionStore
	connector AssistantConnector
	cfg       Config
	logger    *zap.Logger
}

func NewUsecase(
	sessions SessionStore,
	connector AssistantConnector,
	cfg Config,
	logger *zap.Logger,
) *AssistantUsecase {
	if cfg.Persona == "" {
		cfg.Persona = DefaultPersona()
	}
	if cfg.ContextTurns < 1 {
		cfg.ContextTurns = 1
	}

	return &AssistantUsecase{
		sessions:  sessions,
		connector: connector,
		cfg:       cfg,
		logger:    logger,
	}
}

// DefaultPersona returns the built-in consultant prompt
func DefaultPersona() string {
	return strings.TrimSpace(defaultPersona)
}

// LoadPersona reads a persona prompt from path, falling back to the built-in one
func LoadPersona(path string) (string, error) {
	if path == "" {
		return DefaultPersona(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona prompt: %w", err)
	}

	persona := strings.TrimSpace(string(data))
	if persona == "" {
		return "", fmt.Errorf("persona prompt %s is empty", path)
	}

	return persona, nil
}

// Converse answers text in the consultant persona.
// History is extended only when the model answered.
func (uc *AssistantUsecase) Converse(ctx context.Context, userID int64, text string) ([]entity.Reply, error) {
	ctx = logger.WithAction(ctx, "assistant_converse")

	history := uc.sessions.Assistant(userID)
	if keep := uc.cfg.ContextTurns - 1; len(history) > keep {
		history = history[len(history)-keep:]
	}

	answer, err := uc.connector.Reply(ctx, uc.cfg.Persona, history, text)
	if err != nil {
		ctxzap.Error(ctx, "assistant reply failed", zap.Error(err))
		return []entity.Reply{entity.TextReply(messages.ErrAssistantFailed)}, nil
	}

	uc.sessions.AppendTurns(userID,
		entity.Turn{Role: entity.RoleUser, Content: text},
		entity.Turn{Role: entity.RoleAssistant, Content: answer},
	)

	ctxzap.Debug(ctx, "assistant replied",
		zap.Int("context_turns", len(history)+1),
		zap.Int("answer_length", len(answer)),
	)

	return []entity.Reply{entity.MenuReply(answer, messages.MainMenu()...)}, nil
}

// ContactManager returns the manager contact text
func (uc *AssistantUsecase) ContactManager(ctx context.Context) []entity.Reply {
	ctxzap.Info(logger.WithAction(ctx, "contact_manager"), "manager contact requested")
	return []entity.Reply{entity.MenuReply(uc.cfg.ManagerContact, messages.MainMenu()...)}
}
