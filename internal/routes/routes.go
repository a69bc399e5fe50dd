package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/config"
	"github.com/campuslink/campuslink/internal/identity"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/otp"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var studentRepo identity.Repository
	if d.DB != nil {
		studentRepo = identity.NewPostgresRepository(d.DB)
	} else {
		studentRepo = identity.NewMemoryRepository()
	}
	studentSvc := identity.NewService(studentRepo)

	tokens, err := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.SessionTTL)
	if err != nil {
		return err
	}

	var verifier otp.Verifier
	if d.Cfg.TwilioAccountSID != "" {
		verifier, err = otp.NewTwilioVerifier(d.Cfg.TwilioAccountSID, d.Cfg.TwilioAuthToken, d.Cfg.TwilioVerifySID)
		if err != nil {
			return err
		}
	} else {
		verifier = otp.NewLoggerVerifier(d.Logger)
	}
	otpSvc := otp.NewService(verifier, d.Cache, d.Cfg.OTPCountryCode, d.Cfg.OTPCooldown, d.Logger)

	authSvc := auth.NewService(studentSvc, tokens, otpSvc, d.Logger)
	authHandler := auth.NewHandler(authSvc, !d.Cfg.IsDev())
	otpHandler := otp.NewHandler(otpSvc)

	api := app.Group("/api/v1")

	// Attach-if-present: downstream feature routers mounted on this group see
	// the caller's identity when a valid credential rode along.
	api.Use(middleware.Session(tokens, studentRepo))

	RegisterAuthRoutes(api, authHandler, middleware.RequireSession(tokens, studentRepo))
	RegisterOTPRoutes(api, otpHandler)

	return nil
}
