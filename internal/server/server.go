// Package server wires repositories, services and handlers into a fiber app.
package server

import (
	"context"
	"fmt"
	"time"

	"labchem/internal/config"
	"labchem/internal/forms"
	"labchem/internal/handlers"
	"labchem/internal/middleware"
	"labchem/internal/repositories"
	"labchem/internal/services"
	"labchem/internal/sessions"
	"labchem/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the long-lived resources the app is built from.
type Deps struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *gorm.DB
	SessionStorage fiber.Storage           // nil selects fiber's in-memory storage
	Publisher      services.EventPublisher // nil disables reagent events
}

// NewApp builds the fiber app with every route registered.
func NewApp(d Deps) (*fiber.App, error) {
	l := d.Logger

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	reagentRepo := repositories.NewGORMReagentRepository(d.DB)

	// --- Services ---
	hasher, err := services.NewPasswordHasher(d.Config.Security.PasswordHasher)
	if err != nil {
		return nil, err
	}
	authService := services.NewAuthService(userRepo, hasher, l.Named("auth"))
	reagentService := services.NewReagentService(reagentRepo, d.Publisher, l.Named("reagents"))

	if err := seedUser(authService, d.Config, l); err != nil {
		return nil, err
	}

	// --- Sessions ---
	signer, err := sessions.NewSigner(d.Config.Session.SecretKey)
	if err != nil {
		return nil, err
	}
	manager := sessions.NewManager(d.SessionStorage, signer, sessions.Options{
		CookieName: d.Config.Session.CookieName,
		TTL:        d.Config.Session.TTL,
		Secure:     d.Config.IsProd(),
	})

	// --- Handlers ---
	homeHandler := handlers.NewHomeHandler(authService, l.Named("home"))
	authHandler := handlers.NewAuthHandler(authService, manager, l.Named("auth"))
	reagentHandler := handlers.NewReagentHandler(reagentService, l.Named("reagents"))

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		Views:                 views.New(),
		ViewsLayout:           views.Layout,
		ErrorHandler:          handlers.ErrorHandler(l),
		DisableStartupMessage: d.Config.IsProd(),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: zap.NewStdLog(l.Named("http")).Writer(),
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", healthHandler(d.DB))

	app.Use(middleware.Sessions(manager, l.Named("sessions")))
	guard := middleware.AuthRequired()

	// --- Routes ---
	homeHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app, guard)
	reagentHandler.RegisterRoutes(app, guard)

	return app, nil
}

// seedUser creates the configured first account on an empty users table.
func seedUser(authService *services.AuthService, cfg *config.Config, l *zap.Logger) error {
	if cfg.Admin.Email == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := authService.SeedUser(ctx, &forms.NewUserForm{
		FirstName:       cfg.Admin.FirstName,
		LastName:        cfg.Admin.LastName,
		Email:           cfg.Admin.Email,
		Password:        cfg.Admin.Password,
		PasswordConfirm: cfg.Admin.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to seed first user: %w", err)
	}
	if created {
		l.Info("seeded first user", zap.String("email", cfg.Admin.Email))
	}
	return nil
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbStatus := "healthy", "connected"
		code := fiber.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status, dbStatus = "unhealthy", err.Error()
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
