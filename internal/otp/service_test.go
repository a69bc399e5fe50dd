package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campuslink/campuslink/internal/logging"
)

type stubVerifier struct {
	started  []string
	startErr error
	status   string
	checkErr error
}

func (s *stubVerifier) Start(_ context.Context, phone string) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, phone)
	return nil
}

func (s *stubVerifier) Check(_ context.Context, _, _ string) (string, error) {
	return s.status, s.checkErr
}

func TestNormalizeAppliesCountryPrefix(t *testing.T) {
	svc := NewService(&stubVerifier{}, nil, "+91", 0, logging.Discard())

	if got := svc.Normalize("9876543210"); got != "+919876543210" {
		t.Fatalf("expected +919876543210, got %s", got)
	}
	if got := svc.Normalize("+447911123456"); got != "+447911123456" {
		t.Fatalf("prefixed numbers must pass through, got %s", got)
	}
	if got := svc.Normalize(" 9876543210 "); got != "+919876543210" {
		t.Fatalf("expected trimmed +919876543210, got %s", got)
	}
}

func TestDispatchWrapsProviderFailure(t *testing.T) {
	verifier := &stubVerifier{startErr: errors.New("invalid number")}
	svc := NewService(verifier, nil, "+91", 0, logging.Discard())

	err := svc.Dispatch(context.Background(), "9876543210")
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestConfirmMapsOnlyApproved(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{"approved", "pending", "denied", "canceled", "APPROVED", ""} {
		verifier := &stubVerifier{status: status}
		svc := NewService(verifier, nil, "+91", 0, logging.Discard())

		approved, err := svc.Confirm(ctx, "9876543210", "000000")
		if err != nil {
			t.Fatalf("status %q: unexpected error %v", status, err)
		}
		if approved != (status == StatusApproved) {
			t.Fatalf("status %q mapped to approved=%v", status, approved)
		}
	}
}

func TestConfirmSurfacesTransportFailure(t *testing.T) {
	verifier := &stubVerifier{checkErr: errors.New("provider unreachable")}
	svc := NewService(verifier, nil, "+91", 0, logging.Discard())

	if _, err := svc.Confirm(context.Background(), "9876543210", "000000"); err == nil {
		t.Fatalf("expected transport failure to surface")
	}
}

func TestDispatchCooldown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	verifier := &stubVerifier{}
	svc := NewService(verifier, cache, "+91", time.Minute, logging.Discard())
	ctx := context.Background()

	if err := svc.Dispatch(ctx, "9876543210"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := svc.Dispatch(ctx, "9876543210"); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}
	// A different number is unaffected.
	if err := svc.Dispatch(ctx, "9123456789"); err != nil {
		t.Fatalf("dispatch to second number: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := svc.Dispatch(ctx, "9876543210"); err != nil {
		t.Fatalf("dispatch after cooldown window: %v", err)
	}

	if len(verifier.started) != 3 {
		t.Fatalf("expected 3 provider dispatches, got %d", len(verifier.started))
	}
}

func TestFailedDispatchDoesNotOpenCooldown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	verifier := &stubVerifier{startErr: errors.New("provider unreachable")}
	svc := NewService(verifier, cache, "+91", time.Minute, logging.Discard())
	ctx := context.Background()

	if err := svc.Dispatch(ctx, "9876543210"); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}

	// The failed attempt must not hold the window against a retry.
	verifier.startErr = nil
	if err := svc.Dispatch(ctx, "9876543210"); err != nil {
		t.Fatalf("retry after provider failure: %v", err)
	}
	// The successful retry opens it.
	if err := svc.Dispatch(ctx, "9876543210"); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown after successful dispatch, got %v", err)
	}
}

func TestDispatchFailOpenWithoutRedis(t *testing.T) {
	verifier := &stubVerifier{}
	svc := NewService(verifier, nil, "+91", time.Minute, logging.Discard())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.Dispatch(ctx, "9876543210"); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
}
