package common

import (
	"github.com/futig/garage-bot/internal/config"
	pkgHTTP "github.com/futig/garage-bot/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "garage-bot"

// NewBaseConnector builds an authorized, logging HTTP connector for a backend service
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithUserAgent(userAgent),
		pkgHTTP.WithRequestLogging(),
	}
	if cfg.Token != "" {
		opts = append(opts, pkgHTTP.WithAuthToken(cfg.Token))
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}
