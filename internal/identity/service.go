package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateAdmission signals a registration reusing an existing
	// admission number.
	ErrDuplicateAdmission = errors.New("admission number already registered")
	// ErrDuplicateEmail signals a registration reusing an existing email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is deliberately generic: callers must not be able
	// to tell an unknown identifier from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages the student account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new student and stores a bcrypt hash of the password.
// The plaintext never reaches the repository.
func (s *Service) Register(ctx context.Context, reg Registration) (Student, error) {
	if reg.Password == "" {
		return Student{}, errors.New("password is required")
	}

	// Best-effort pre-check; the store's unique constraint is what actually
	// guarantees uniqueness under concurrent registrations.
	if _, err := s.repo.FindByAdmissionNumber(ctx, reg.AdmissionNumber); err == nil {
		return Student{}, ErrDuplicateAdmission
	} else if !errors.Is(err, ErrNotFound) {
		return Student{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return Student{}, err
	}

	student := Student{
		ID:              uuid.New().String(),
		Name:            reg.Name,
		Email:           reg.Email,
		PasswordHash:    hash,
		DateOfBirth:     reg.DateOfBirth,
		Gender:          reg.Gender,
		Mobile:          reg.Mobile,
		AdmissionNumber: reg.AdmissionNumber,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return Student{}, err
	}

	return student, nil
}

// Authenticate resolves the identifier and verifies the password. Both a
// lookup miss and a hash mismatch collapse into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (Student, error) {
	student, err := s.ResolveForLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, err
	}

	if err := bcrypt.CompareHashAndPassword(student.PasswordHash, []byte(password)); err != nil {
		return Student{}, ErrInvalidCredentials
	}

	return student, nil
}

// ResolveForLogin classifies the identifier and looks the account up through
// the matching namespace. Anything containing an '@' is treated as an email;
// everything else as an admission number. A deliberate syntactic heuristic,
// not a validation grammar.
func (s *Service) ResolveForLogin(ctx context.Context, identifier string) (Student, error) {
	if strings.ContainsRune(identifier, '@') {
		return s.repo.FindByEmail(ctx, identifier)
	}
	return s.repo.FindByAdmissionNumber(ctx, identifier)
}

// ChangePassword hashes the new plaintext and stores it. No route is wired
// yet; kept so the hashing rule stays in one place when one is.
func (s *Service) ChangePassword(ctx context.Context, id, password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}
