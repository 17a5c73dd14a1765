package document

import (
	"context"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Smallest valid single-page PDF
const mockPDF = "%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/MediaBox[0 0 595 842]/Parent 2 0 R>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n"

// MockConnector returns a placeholder document without network access
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Fetch(ctx context.Context, ref string) (*entity.Attachment, error) {
	ctxzap.Info(ctx, "[MOCK] document downloaded", zap.String("ref", ref))

	return &entity.Attachment{
		Name:    defaultFileName,
		Caption: caption,
		Data:    []byte(mockPDF),
	}, nil
}
