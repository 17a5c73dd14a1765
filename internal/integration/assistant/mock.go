package assistant

import (
	"context"
	"fmt"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling a model
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Reply(ctx context.Context, persona string, history []entity.Turn, query string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] assistant reply",
		zap.Int("history", len(history)),
		zap.Int("query_length", len(query)),
	)

	return fmt.Sprintf("Спасибо за вопрос! Это тестовый ответ консультанта на: %q. "+
		"Чтобы узнать точную стоимость гаража, нажмите «Рассчитать стоимость».", query), nil
}
