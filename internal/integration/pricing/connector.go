package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/integration/common"
	"github.com/futig/garage-bot/internal/pkg/logger"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	pkghttp "github.com/futig/garage-bot/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	totalField      = "total"
	requestIDHeader = "X-Request-ID"
	pdfSuffix       = ".pdf"
)

// Document reference fields in lookup order
var documentFields = []string{"kp_url", "kp_pdf", "pdf"}

// Connector talks to the spreadsheet pricing engine
type Connector struct {
	config    config.PricingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.PricingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Fetch posts the request and normalizes the engine response.
// Transport failures are retried when PRICING_RETRY_ATTEMPTS > 1; protocol and
// contract failures never are.
func (c *Connector) Fetch(ctx context.Context, req *entity.PricingRequest) (*entity.PricingResult, error) {
	requestID := uuid.NewString()
	ctx = logger.AddFields(ctx, zap.String("pricing_request_id", requestID))

	ctxzap.Info(ctx, "requesting price",
		zap.Int("input_cells", len(req.InputCells)),
		zap.Bool("generate_kp", req.GenerateKP),
	)

	raw, err := pkgRetry.Do(ctx, &c.config.Retry, isTransport, func() (map[string]any, error) {
		var body map[string]any
		err := c.connector.DoRequest(ctx, http.MethodPost, "", req, &body,
			pkghttp.WithHeader(requestIDHeader, requestID),
		)
		if err != nil {
			return nil, classify(err)
		}
		if body == nil {
			return nil, fmt.Errorf("%w: empty response body", entity.ErrPricingProtocol)
		}
		return body, nil
	})
	if err != nil {
		// the deadline may expire during backoff, retry-go then returns the bare context error
		if !isTransport(err) && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = fmt.Errorf("%w: %w", entity.ErrPricingTransport, err)
		}
		ctxzap.Error(ctx, "pricing request failed", zap.Error(err))
		return nil, err
	}

	result, err := ParseResponse(raw)
	if err != nil {
		ctxzap.Error(ctx, "pricing response rejected", zap.Error(err))
		return nil, err
	}

	ctxzap.Info(ctx, "price received",
		zap.Float64("price", result.Price),
		zap.Bool("has_document", result.HasDocument()),
	)

	return result, nil
}

// ParseResponse extracts the price and the document reference from a decoded engine response
func ParseResponse(raw map[string]any) (*entity.PricingResult, error) {
	value, ok := raw[totalField]
	if !ok || value == nil {
		return nil, fmt.Errorf("%w: field %q absent", entity.ErrPricingContract, totalField)
	}

	price, err := parsePrice(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrPricingProtocol, err)
	}

	return &entity.PricingResult{
		Price:       price,
		DocumentRef: documentRef(raw),
	}, nil
}

func parsePrice(value any) (float64, error) {
	var text string

	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case float64:
		return checkFinite(v)
	case string:
		text = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		text = strings.ReplaceAll(text, "\u00a0", "")
		text = strings.ReplaceAll(text, ",", ".")
	default:
		return 0, fmt.Errorf("price has unexpected type %T", value)
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", text)
	}

	return checkFinite(n)
}

func checkFinite(n float64) (float64, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("price is not finite")
	}
	return n, nil
}

func documentRef(raw map[string]any) string {
	for _, field := range documentFields {
		if s, ok := raw[field].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s, ok := raw[k].(string); ok && strings.HasSuffix(strings.ToLower(strings.TrimSpace(s)), pdfSuffix) {
			return strings.TrimSpace(s)
		}
	}

	return ""
}

// classify maps connector errors onto the pricing error taxonomy
func classify(err error) error {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", entity.ErrPricingTransport, err)
	}

	// non-2xx status, undecodable body, request encoding
	return fmt.Errorf("%w: %w", entity.ErrPricingProtocol, err)
}

func isTransport(err error) bool {
	return errors.Is(err, entity.ErrPricingTransport)
}
