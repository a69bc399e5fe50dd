package otp

import (
	"context"
	"log/slog"
)

// StatusApproved is the one provider status that counts as a passed check.
// Everything else (pending, denied, canceled, ...) is a failed verdict.
const StatusApproved = "approved"

// Verifier is the narrow capability this core needs from the remote SMS
// verification provider: start a challenge for a phone number, and check a
// submitted code against the most recent challenge for that number. The
// provider owns all challenge state.
type Verifier interface {
	Start(ctx context.Context, phone string) error
	Check(ctx context.Context, phone, code string) (status string, err error)
}

// LoggerVerifier is a development stand-in that records challenges in the
// structured log and approves nothing.
type LoggerVerifier struct {
	logger *slog.Logger
}

// NewLoggerVerifier constructs the logging stub.
func NewLoggerVerifier(logger *slog.Logger) *LoggerVerifier {
	return &LoggerVerifier{logger: logger}
}

// Start logs the challenge instead of sending an SMS.
func (v *LoggerVerifier) Start(_ context.Context, phone string) error {
	if v != nil && v.logger != nil {
		v.logger.Info("otp challenge started", slog.String("phone", phone))
	}
	return nil
}

// Check logs the attempt and reports it as pending.
func (v *LoggerVerifier) Check(_ context.Context, phone, _ string) (string, error) {
	if v != nil && v.logger != nil {
		v.logger.Info("otp challenge checked", slog.String("phone", phone))
	}
	return "pending", nil
}
