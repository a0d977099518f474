package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// Service implements the payment lifecycle: intent issuance, webhook
// reconciliation, refunds, and the read-side queries. All persistence and
// gateway access goes through injected ports so every flow is testable
// against doubles.
type Service struct {
	cfg       Config
	sales     ports.SaleRepository
	payments  ports.PaymentRepository
	stores    ports.StoreRepository
	analytics ports.AnalyticsRepository
	gateway   ports.PaymentGateway
	verifier  ports.SignatureVerifier
	dedup     ports.EventDedupStore
	rateLimit ports.RateLimitStore
	nowFn     func() time.Time
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:       deps.Config,
		sales:     deps.Sales,
		payments:  deps.Payments,
		stores:    deps.Stores,
		analytics: deps.Analytics,
		gateway:   deps.Gateway,
		verifier:  deps.Verifier,
		dedup:     deps.Dedup,
		rateLimit: deps.RateLimit,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.Currency == "" {
		s.cfg.Currency = "USD"
	}
	if s.cfg.EventDedupTTL <= 0 {
		s.cfg.EventDedupTTL = 72 * time.Hour
	}
	if s.cfg.IntentRateLimitWindow <= 0 {
		s.cfg.IntentRateLimitWindow = time.Minute
	}
	if s.cfg.AnalyticsDefaultDays <= 0 {
		s.cfg.AnalyticsDefaultDays = 30
	}
	return s
}

func (s *Service) logger() *slog.Logger {
	return slog.Default().With(
		"service", s.cfg.ServiceName,
		"module", "application",
		"layer", "application",
	)
}

func (s *Service) enforceRateLimit(ctx context.Context, key string, threshold int, window time.Duration) error {
	if s.rateLimit == nil || threshold <= 0 {
		return nil
	}
	count, err := s.rateLimit.Increment(ctx, key, window)
	if err != nil {
		// Limiter outage should not block purchases.
		s.logger().WarnContext(ctx, "rate limit store unavailable",
			"operation", "enforce_rate_limit",
			"outcome", "degraded",
			"error", err.Error(),
		)
		return nil
	}
	if count > int64(threshold) {
		return fmt.Errorf("%w: too many payment attempts, retry later", domain.ErrRateLimited)
	}
	return nil
}
