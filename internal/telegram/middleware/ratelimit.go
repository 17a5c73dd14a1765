package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/futig/garage-bot/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware implements token bucket rate limiting per user
type RateLimiterMiddleware struct {
	limits     map[int64]*userLimit
	mu         sync.Mutex
	maxTokens  float64 // Bucket capacity
	refillRate float64 // Tokens added per second
	logger     *zap.Logger
	sender     Sender
	now        func() time.Time
}

// NewRateLimiterMiddleware creates a limiter allowing burst messages at once
// and requestsPerMinute on average
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burst int,
	logger *zap.Logger,
	sender Sender,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits:     make(map[int64]*userLimit),
		maxTokens:  float64(burst),
		refillRate: float64(requestsPerMinute) / 60.0,
		logger:     logger,
		sender:     sender,
		now:        time.Now,
	}
}

// Run removes inactive users until ctx is done
func (rl *RateLimiterMiddleware) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// Handle drops the update when the user is over the limit
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next Handler) {
	userID, chatID, ok := origin(update)
	if !ok {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	now := rl.now()

	rl.mu.Lock()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{
			tokens:     rl.maxTokens,
			lastRefill: now,
		}
		rl.limits[userID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens = min(limit.tokens+elapsed*rl.refillRate, rl.maxTokens)
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		limit.warningsSent = 0
		return true
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now

		rl.sendWarning(chatID, limit.warningsSent)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64, warningCount int) {
	var text string

	switch {
	case warningCount == 1:
		text = render.WarnRateLimit1
	case warningCount == 2:
		text = render.WarnRateLimit2
	default:
		text = render.WarnRateLimit3
	}

	if _, err := rl.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (rl *RateLimiterMiddleware) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, limit := range rl.limits {
		limit.mu.Lock()
		if now.Sub(limit.lastRefill) > inactiveThreshold {
			delete(rl.limits, userID)
			rl.logger.Debug("cleaned up inactive user from rate limiter",
				zap.Int64("user_id", userID),
			)
		}
		limit.mu.Unlock()
	}
}
