package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/garage-bot/internal/telegram"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	bot             telegram.Bot
	server          *http.Server // nil when the ops server is disabled
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// Run starts the bot and the ops server and blocks until a shutdown signal
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)

	// The webhook route must be served before Telegram starts pushing updates
	if a.server != nil {
		go func() {
			a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	if err := a.bot.Start(ctx); err != nil {
		a.shutdownServer()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		_ = a.bot.Stop()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	return a.shutdown()
}

// shutdown stops intake first, then drains in-flight handlers
func (a *App) shutdown() error {
	serverErr := a.shutdownServer()
	botErr := a.bot.Stop()

	_ = a.logger.Sync()

	if serverErr != nil {
		return serverErr
	}
	if botErr != nil {
		return botErr
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}

func (a *App) shutdownServer() error {
	if a.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
