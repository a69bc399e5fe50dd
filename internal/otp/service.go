package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrDispatchFailed wraps a provider failure while starting a challenge.
	ErrDispatchFailed = errors.New("otp dispatch failed")
	// ErrCooldown signals a repeated dispatch for the same mobile inside the
	// resend window.
	ErrCooldown = errors.New("otp recently sent, try again later")
)

const cooldownPrefix = "otp:cooldown:"

// Service orchestrates OTP challenges against the remote verifier. It keeps
// no challenge state of its own; the provider is the sole source of truth for
// challenge validity and expiry.
type Service struct {
	verifier    Verifier
	cache       *redis.Client
	countryCode string
	cooldown    time.Duration
	logger      *slog.Logger
}

// NewService builds the orchestrator. cache may be nil; the resend cooldown
// then degrades to a no-op.
func NewService(verifier Verifier, cache *redis.Client, countryCode string, cooldown time.Duration, logger *slog.Logger) *Service {
	if countryCode == "" {
		countryCode = "+91"
	}
	return &Service{verifier: verifier, cache: cache, countryCode: countryCode, cooldown: cooldown, logger: logger}
}

// Dispatch starts a challenge for the mobile number. Provider failures are
// wrapped in ErrDispatchFailed so the caller decides whether to surface or
// tolerate them. The cooldown window opens only after the provider accepted
// the dispatch; a failed attempt stays immediately retryable.
func (s *Service) Dispatch(ctx context.Context, mobile string) error {
	phone := s.Normalize(mobile)

	if s.cooldownActive(ctx, phone) {
		return ErrCooldown
	}

	if err := s.verifier.Start(ctx, phone); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	s.markDispatched(ctx, phone)
	return nil
}

// Confirm submits the code and maps the provider's raw status to a verdict.
// Anything other than an exact "approved" is a false verdict, not an error;
// only a transport failure returns one.
func (s *Service) Confirm(ctx context.Context, mobile, code string) (bool, error) {
	status, err := s.verifier.Check(ctx, s.Normalize(mobile), code)
	if err != nil {
		return false, err
	}
	return status == StatusApproved, nil
}

// Normalize derives the international form the provider expects from the
// stored local number. One fixed country prefix; numbers already carrying a
// '+' pass through untouched.
func (s *Service) Normalize(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	if strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return s.countryCode + mobile
}

// cooldownActive reports whether a recent dispatch holds the per-mobile
// window. Fail-open: without Redis, or on a cache error, dispatch proceeds.
func (s *Service) cooldownActive(ctx context.Context, phone string) bool {
	if s.cache == nil || s.cooldown <= 0 {
		return false
	}
	held, err := s.cache.Exists(ctx, cooldownPrefix+phone).Result()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("otp cooldown check failed", slog.Any("error", err))
		}
		return false
	}
	return held > 0
}

// markDispatched opens the cooldown window for the number. Best-effort.
func (s *Service) markDispatched(ctx context.Context, phone string) {
	if s.cache == nil || s.cooldown <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cooldownPrefix+phone, "1", s.cooldown).Err(); err != nil && s.logger != nil {
		s.logger.Warn("otp cooldown reservation failed", slog.Any("error", err))
	}
}
