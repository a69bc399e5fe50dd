package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslink/campuslink/internal/identity"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// Locals keys under which the session middleware attaches the caller's
// identity. Defined here, next to the handlers that read them, so middleware
// and handlers cannot drift apart.
const (
	StudentLocal   = "student"
	StudentIDLocal = "student_id"
)

const dateLayout = "2006-01-02"

// Handler exposes the register/login/logout/me endpoints.
type Handler struct {
	svc    *Service
	secure bool // Secure cookie attribute, off only in dev
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(svc *Service, secure bool) *Handler {
	return &Handler{svc: svc, secure: secure}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	DateOfBirth     string `json:"dob"`
	Gender          string `json:"gender"`
	Mobile          string `json:"mobile"`
	AdmissionNumber string `json:"admission_number"`
}

type studentResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	DateOfBirth     string `json:"dob"`
	Gender          string `json:"gender"`
	Mobile          string `json:"mobile"`
	AdmissionNumber string `json:"admission_number"`
	CreatedAt       string `json:"created_at"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Student studentResponse `json:"student"`
	OTPSent *bool           `json:"otp_sent,omitempty"`
}

// Register creates an account, sets the session cookie and reports whether
// the post-registration OTP dispatch went out.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	reg, err := req.validate()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	session, err := h.svc.Register(c.UserContext(), reg)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateAdmission), errors.Is(err, identity.ErrDuplicateEmail):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}

	h.setSessionCookie(c, session.Token)
	otpSent := session.OTPSent
	return c.Status(http.StatusCreated).JSON(sessionResponse{
		Token:   session.Token,
		Student: toStudentResponse(session.Student),
		OTPSent: &otpSent,
	})
}

type loginRequest struct {
	Identifier      string `json:"identifier"`
	Email           string `json:"email"`
	AdmissionNumber string `json:"admission_number"`
	Password        string `json:"password"`
}

// Login authenticates either identifier namespace and sets the session cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.AdmissionNumber
	}
	if identifier == "" {
		return fiber.NewError(http.StatusBadRequest, "identifier, email or admission_number is required")
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "password is required")
	}

	session, err := h.svc.Login(c.UserContext(), identifier, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, identity.ErrInvalidCredentials.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	h.setSessionCookie(c, session.Token)
	return c.Status(http.StatusOK).JSON(sessionResponse{
		Token:   session.Token,
		Student: toStudentResponse(session.Student),
	})
}

// Logout clears the session cookie. Tokens are stateless; there is nothing to
// invalidate server-side.
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// Me returns the identity attached by the mandatory session middleware.
func (h *Handler) Me(c *fiber.Ctx) error {
	student, ok := c.Locals(StudentLocal).(identity.Student)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return c.Status(http.StatusOK).JSON(toStudentResponse(student.Redact()))
}

func (h *Handler) setSessionCookie(c *fiber.Ctx, token string) {
	ttl := h.svc.tokens.TTL()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (r registerRequest) validate() (identity.Registration, error) {
	switch {
	case r.Name == "":
		return identity.Registration{}, errors.New("name is required")
	case r.Password == "":
		return identity.Registration{}, errors.New("password is required")
	case r.DateOfBirth == "":
		return identity.Registration{}, errors.New("dob is required")
	case r.Gender == "":
		return identity.Registration{}, errors.New("gender is required")
	case r.Mobile == "":
		return identity.Registration{}, errors.New("mobile is required")
	case r.AdmissionNumber == "":
		return identity.Registration{}, errors.New("admission_number is required")
	}

	for _, ch := range r.Mobile {
		if ch < '0' || ch > '9' {
			return identity.Registration{}, errors.New("mobile must contain digits only")
		}
	}

	dob, err := time.Parse(dateLayout, r.DateOfBirth)
	if err != nil {
		return identity.Registration{}, errors.New("dob must be formatted as YYYY-MM-DD")
	}

	return identity.Registration{
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		DateOfBirth:     dob,
		Gender:          r.Gender,
		Mobile:          r.Mobile,
		AdmissionNumber: r.AdmissionNumber,
	}, nil
}

func toStudentResponse(s identity.Student) studentResponse {
	return studentResponse{
		ID:              s.ID,
		Name:            s.Name,
		Email:           s.Email,
		DateOfBirth:     s.DateOfBirth.Format(dateLayout),
		Gender:          s.Gender,
		Mobile:          s.Mobile,
		AdmissionNumber: s.AdmissionNumber,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}
