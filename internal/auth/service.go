package auth

import (
	"context"
	"log/slog"

	"github.com/campuslink/campuslink/internal/identity"
	"github.com/campuslink/campuslink/internal/otp"
)

// Service composes identity, token issuance and OTP dispatch into the two
// top-level account operations.
type Service struct {
	ids    *identity.Service
	tokens *TokenIssuer
	otp    *otp.Service
	logger *slog.Logger
}

// NewService wires the auth facade.
func NewService(ids *identity.Service, tokens *TokenIssuer, otpSvc *otp.Service, logger *slog.Logger) *Service {
	return &Service{ids: ids, tokens: tokens, otp: otpSvc, logger: logger}
}

// Session pairs a signed token with the redacted account it asserts.
type Session struct {
	Token   string
	Student identity.Student
	OTPSent bool
}

// Register creates the account, issues its first session and dispatches an
// OTP challenge to the registered mobile. The dispatch is best-effort: a
// provider failure is logged and reported through OTPSent but never fails the
// registration itself.
func (s *Service) Register(ctx context.Context, reg identity.Registration) (Session, error) {
	student, err := s.ids.Register(ctx, reg)
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(student.ID)
	if err != nil {
		return Session{}, err
	}

	otpSent := false
	if s.otp != nil {
		if err := s.otp.Dispatch(ctx, student.Mobile); err != nil {
			s.logger.Warn("post-registration otp dispatch failed",
				slog.String("student_id", student.ID),
				slog.Any("error", err))
		} else {
			otpSent = true
		}
	}

	return Session{Token: token, Student: student.Redact(), OTPSent: otpSent}, nil
}

// Login authenticates the identifier/password pair and issues a session.
func (s *Service) Login(ctx context.Context, identifier, password string) (Session, error) {
	student, err := s.ids.Authenticate(ctx, identifier, password)
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(student.ID)
	if err != nil {
		return Session{}, err
	}

	return Session{Token: token, Student: student.Redact()}, nil
}
