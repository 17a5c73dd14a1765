package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/garage-bot/internal/api"
	"github.com/futig/garage-bot/internal/api/ops"
	"github.com/futig/garage-bot/internal/config"
	"github.com/futig/garage-bot/internal/flow"
	assistantconn "github.com/futig/garage-bot/internal/integration/assistant"
	"github.com/futig/garage-bot/internal/integration/callback"
	"github.com/futig/garage-bot/internal/integration/document"
	"github.com/futig/garage-bot/internal/integration/pricing"
	"github.com/futig/garage-bot/internal/pkg/logger"
	"github.com/futig/garage-bot/internal/router"
	"github.com/futig/garage-bot/internal/session"
	"github.com/futig/garage-bot/internal/telegram"
	"github.com/futig/garage-bot/internal/usecase/assistant"
	"github.com/futig/garage-bot/internal/usecase/quote"
	"go.uber.org/zap"
)

// Pricing bundles what is needed to price a dialog outside the bot
type Pricing struct {
	Config    *config.Config
	Logger    *zap.Logger
	Variants  *flow.Registry
	Pricing   quote.PricingConnector
	Documents quote.DocumentConnector
}

// BuildPricing loads configuration and creates the pricing side only
func BuildPricing(environment string) (*Pricing, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	registry, err := flow.LoadRegistry(cfg.FlowCfg.VariantsDir)
	if err != nil {
		return nil, fmt.Errorf("load flow variants: %w", err)
	}

	p := &Pricing{
		Config:   cfg,
		Logger:   log,
		Variants: registry,
	}

	if cfg.EnableMocks {
		log.Info("Using mock pricing engine")
		p.Pricing = pricing.NewMockConnector(log)
		p.Documents = document.NewMockConnector(log)
	} else {
		p.Pricing = pricing.NewConnector(cfg.PricingCfg, log)
		p.Documents = document.NewConnector(cfg.DocumentCfg, cfg.PricingCfg.Url, log)
	}

	return p, nil
}

// Build creates the chat bot with all its dependencies
func Build(environment string) (*App, error) {
	ctx := context.Background()

	p, err := BuildPricing(environment)
	if err != nil {
		return nil, err
	}
	cfg, log := p.Config, p.Logger

	if err := cfg.ValidateBot(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("variant", cfg.FlowCfg.Variant),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	store := session.NewStore(session.Config{
		FlowTTL:         cfg.SessionCfg.FlowTTL,
		AssistantTTL:    cfg.SessionCfg.AssistantTTL,
		CleanupInterval: cfg.SessionCfg.CleanupInterval,
		HistoryLimit:    cfg.AssistantCfg.HistoryLimit,
	})

	var assistantConnector assistant.AssistantConnector
	if cfg.EnableMocks {
		log.Info("Using mock assistant backend")
		assistantConnector = assistantconn.NewMockConnector(log)
	} else {
		conn, err := assistantconn.NewConnector(ctx, cfg.AssistantCfg, log)
		if err != nil {
			return nil, fmt.Errorf("create assistant connector: %w", err)
		}
		assistantConnector = conn
	}

	persona, err := assistant.LoadPersona(cfg.AssistantCfg.PromptFile)
	if err != nil {
		return nil, err
	}

	quoteUC, err := quote.NewUsecase(store, p.Variants, p.Pricing, p.Documents, cfg.FlowCfg.Variant, log)
	if err != nil {
		return nil, fmt.Errorf("create quote usecase: %w", err)
	}
	if cfg.CallbackCfg.Url != "" {
		log.Info("Quote events enabled")
		quoteUC.WithNotifier(callback.NewConnector(cfg.CallbackCfg, log))
	}

	assistantUC := assistant.NewUsecase(store, assistantConnector, assistant.Config{
		Persona:        persona,
		ContextTurns:   cfg.AssistantCfg.ContextTurns,
		ManagerContact: cfg.ManagerContact,
	}, log)
	log.Info("Use cases initialized")

	messageRouter := router.New(store, quoteUC, assistantUC, log)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, messageRouter, log)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	app := &App{
		bot:             bot,
		logger:          log,
		shutdownTimeout: time.Duration(cfg.TelegramCfg.ShutdownTimeout) * time.Second,
	}

	if cfg.HTTPCfg.Enabled {
		var webhook http.Handler
		if cfg.TelegramCfg.UseWebhook {
			webhook = bot.WebhookHandler()
		}

		handler := api.SetupRouter(ops.NewHandler(store, p.Variants, cfg.FlowCfg.Variant), webhook, log)
		app.server = &http.Server{
			Addr:         cfg.HTTPCfg.Addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		log.Info("HTTP router configured", zap.String("addr", cfg.HTTPCfg.Addr))
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return app, nil
}
