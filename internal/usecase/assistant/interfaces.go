package assistant

import (
	"context"

	"github.com/futig/garage-bot/internal/entity"
)

type AssistantConnector interface {
	Reply(ctx context.Context, persona string, history []entity.Turn, query string) (string, error)
}

type SessionStore interface {
	Assistant(userID int64) []entity.Turn
	AppendTurns(userID int64, turns ...entity.Turn)
}
