package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/integration/common"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	pkghttp "github.com/futig/garage-bot/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultFileName = "kp.pdf"
	caption         = "📄 Коммерческое предложение (PDF)"
)

// Connector downloads generated proposal documents
type Connector struct {
	config    config.DocumentConnectorConfig
	connector *pkghttp.Connector
	base      *url.URL
	logger    *zap.Logger
}

// NewConnector creates a document connector. Relative references are resolved against baseURL.
func NewConnector(
	cfg config.DocumentConnectorConfig,
	baseURL string,
	logger *zap.Logger,
) *Connector {
	httpCfg := config.HTTPClientConfig{
		RequestTimeout: cfg.RequestTimeout,
	}

	base, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		base = nil
	}

	return &Connector{
		connector: common.NewBaseConnector(httpCfg, logger),
		config:    cfg,
		base:      base,
		logger:    logger,
	}
}

// Fetch downloads the document behind ref and wraps it as a chat attachment
func (c *Connector) Fetch(ctx context.Context, ref string) (*entity.Attachment, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDocument, err)
	}

	ctxzap.Info(ctx, "downloading document", zap.String("url", target.Redacted()))

	opts := []pkghttp.RequestOpt{pkghttp.WithURL(target.String())}
	if c.config.MaxSize > 0 {
		opts = append(opts, pkghttp.WithMaxBodySize(c.config.MaxSize+1))
	}

	data, err := pkgRetry.Do(ctx, &c.config.Retry, retryable, func() ([]byte, error) {
		return c.connector.DoRaw(ctx, http.MethodGet, "", opts...)
	})
	if err != nil {
		ctxzap.Error(ctx, "document download failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entity.ErrDocument, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", entity.ErrDocument)
	}
	if c.config.MaxSize > 0 && int64(len(data)) > c.config.MaxSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", entity.ErrDocument, c.config.MaxSize)
	}

	ctxzap.Info(ctx, "document downloaded", zap.Int("size", len(data)))

	return &entity.Attachment{
		Name:    FileName(target),
		Caption: caption,
		Data:    data,
	}, nil
}

func (c *Connector) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("parse document reference: %w", err)
	}

	if !u.IsAbs() {
		if c.base == nil {
			return nil, fmt.Errorf("relative document reference %q without base url", ref)
		}
		u = c.base.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported document scheme %q", u.Scheme)
	}

	return u, nil
}

// FileName derives the attachment name from the URL path
func FileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return defaultFileName
	}
	return name
}

// retryable reports errors worth another attempt: network failures and 5xx
func retryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}
