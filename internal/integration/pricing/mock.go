package pricing

import (
	"context"
	"strconv"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	mockBasePrice   = 450000
	mockPricePerM2  = 18500
	mockDocumentURL = "https://example.com/kp/mock.pdf"
)

// MockConnector prices from the floor area without calling the engine
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Fetch returns a synthetic price; C14 and C16 are length and width in every built-in variant
func (m *MockConnector) Fetch(ctx context.Context, req *entity.PricingRequest) (*entity.PricingResult, error) {
	length, _ := strconv.ParseFloat(req.InputCells["C14"], 64)
	width, _ := strconv.ParseFloat(req.InputCells["C16"], 64)

	result := &entity.PricingResult{
		Price: mockBasePrice + length*width*mockPricePerM2,
	}
	if req.GenerateKP {
		result.DocumentRef = mockDocumentURL
	}

	ctxzap.Info(ctx, "[MOCK] price computed",
		zap.Float64("price", result.Price),
		zap.Bool("generate_kp", req.GenerateKP),
	)

	return result, nil
}
