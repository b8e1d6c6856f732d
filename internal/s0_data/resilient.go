package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/config"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// ResilienceConfig controls retries, throttling and the circuit breaker
type ResilienceConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimit      float64 // reads/sec, 0 = unlimited
	RateBurst      int
	BreakerTimeout time.Duration
	BreakerTrips   uint32
}

// ResilienceFromConfig maps process config onto ResilienceConfig
func ResilienceFromConfig(cfg *config.Config) ResilienceConfig {
	return ResilienceConfig{
		MaxRetries:     cfg.Store.MaxRetries,
		InitialDelay:   cfg.Store.RetryDelay,
		MaxDelay:       cfg.Store.MaxRetryDelay,
		RateLimit:      cfg.Store.RateLimit,
		RateBurst:      cfg.Store.RateBurst,
		BreakerTimeout: cfg.Store.BreakerTimeout,
		BreakerTrips:   cfg.Store.BreakerTrips,
	}
}

// ResilientSource decorates a BarSource with rate limiting, bounded retry with
// exponential backoff and a circuit breaker.
// ⭐ SSOT: 저장소 장애 → ErrUpstreamUnavailable 변환은 여기서만
type ResilientSource struct {
	inner   contracts.BarSource
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cfg     ResilienceConfig
	logger  *logger.Logger
}

// NewResilientSource wraps inner
func NewResilientSource(inner contracts.BarSource, rc ResilienceConfig, log *logger.Logger) *ResilientSource {
	trips := rc.BreakerTrips
	if trips == 0 {
		trips = 5
	}

	st := gobreaker.Settings{Name: "price-store"}
	st.Timeout = rc.BreakerTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= trips
	}
	// not-found 와 호출자 취소는 저장소 장애가 아니다
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, contracts.ErrNotFound) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.WithFields(map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("circuit breaker state changed")
	}

	s := &ResilientSource{
		inner:  inner,
		cb:     gobreaker.NewCircuitBreaker(st),
		cfg:    rc,
		logger: log.WithComponent("store"),
	}
	if rc.RateLimit > 0 {
		burst := rc.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rc.RateLimit), burst)
	}
	return s
}

// GetBarsAsOf implements contracts.BarSource
func (s *ResilientSource) GetBarsAsOf(ctx context.Context, symbol string, asOf time.Time, limit int) ([]contracts.Bar, error) {
	return withRetry(ctx, s, "bars_as_of", symbol, func(ctx context.Context) ([]contracts.Bar, error) {
		return s.inner.GetBarsAsOf(ctx, symbol, asOf, limit)
	})
}

// GetBarsAfter implements contracts.BarSource
func (s *ResilientSource) GetBarsAfter(ctx context.Context, symbol string, after time.Time, limit int) ([]contracts.Bar, error) {
	return withRetry(ctx, s, "bars_after", symbol, func(ctx context.Context) ([]contracts.Bar, error) {
		return s.inner.GetBarsAfter(ctx, symbol, after, limit)
	})
}

// ListSymbols implements contracts.BarSource
func (s *ResilientSource) ListSymbols(ctx context.Context) ([]string, error) {
	return withRetry(ctx, s, "list_symbols", "", s.inner.ListSymbols)
}

func withRetry[T any](ctx context.Context, s *ResilientSource, op, symbol string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := s.cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}

		out, err := s.cb.Execute(func() (interface{}, error) {
			return fn(ctx)
		})
		if err == nil {
			return out.(T), nil
		}

		switch {
		case errors.Is(err, contracts.ErrNotFound):
			return zero, err
		case ctx.Err() != nil:
			return zero, ctx.Err()
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return zero, fmt.Errorf("%s %s: %w: %v", op, symbol, contracts.ErrUpstreamUnavailable, err)
		}

		lastErr = err
		if attempt == s.cfg.MaxRetries {
			break
		}

		s.logger.WithError(err).WithFields(map[string]interface{}{
			"op":      op,
			"symbol":  symbol,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Warn("store read failed, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if s.cfg.MaxDelay > 0 && delay > s.cfg.MaxDelay {
			delay = s.cfg.MaxDelay
		}
	}

	return zero, fmt.Errorf("%s %s after %d attempts: %w: %v",
		op, symbol, s.cfg.MaxRetries+1, contracts.ErrUpstreamUnavailable, lastErr)
}
