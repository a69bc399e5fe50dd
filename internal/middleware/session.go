package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/identity"
)

// Session attaches the caller's identity when a valid session credential is
// present and continues silently otherwise. Handlers behind it must treat the
// identity as optional. The identity is stored under auth.StudentLocal and
// auth.StudentIDLocal.
func Session(tokens *auth.TokenIssuer, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if student, ok := resolveSession(c, tokens, repo); ok {
			c.Locals(auth.StudentLocal, student)
			c.Locals(auth.StudentIDLocal, student.ID)
		}
		return c.Next()
	}
}

// RequireSession rejects the request unless a valid session credential
// resolves to an existing identity. A still-valid token whose account no
// longer exists is rejected the same way as a missing or tampered one.
func RequireSession(tokens *auth.TokenIssuer, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		student, ok := resolveSession(c, tokens, repo)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		c.Locals(auth.StudentLocal, student)
		c.Locals(auth.StudentIDLocal, student.ID)
		return c.Next()
	}
}

// resolveSession verifies the transported token and completes the store
// lookup before the identity is used anywhere.
func resolveSession(c *fiber.Ctx, tokens *auth.TokenIssuer, repo identity.Repository) (identity.Student, bool) {
	token := sessionToken(c)
	if token == "" {
		return identity.Student{}, false
	}

	subjectID, err := tokens.Verify(token)
	if err != nil {
		return identity.Student{}, false
	}

	student, err := repo.FindByID(c.UserContext(), subjectID)
	if err != nil {
		return identity.Student{}, false
	}
	return student, true
}

// sessionToken reads the credential from the session cookie, falling back to
// an Authorization bearer header for non-browser callers.
func sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(auth.SessionCookie); cookie != "" {
		return cookie
	}
	authz := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return ""
}
