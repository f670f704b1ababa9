// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/grundwerk/grundwerk/internal/auth"
	"github.com/grundwerk/grundwerk/internal/config"
	"github.com/grundwerk/grundwerk/internal/email"
	"github.com/grundwerk/grundwerk/internal/handler"
	"github.com/grundwerk/grundwerk/internal/middleware"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/grundwerk/grundwerk/internal/seed"
	"github.com/grundwerk/grundwerk/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	projectControlRepo := repository.NewProjectControlRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	dpiaRepo := repository.NewDPIARepository(db)
	measureRepo := repository.NewMeasureRepository(db)

	// Initialize auth services
	passwordHasher := auth.NewPasswordHasher()
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryPeriod)

	// Initialize email service
	emailService, err := email.NewEmailService(cfg)
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}

	// Initialize services
	userService := service.NewUserService(userRepo, orgRepo, passwordHasher, tokenManager, emailService, cfg)
	projectService := service.NewProjectService(projectRepo, projectControlRepo, catalogRepo)
	projectControlService := service.NewProjectControlService(projectRepo, projectControlRepo, catalogRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	auditService := service.NewAuditService(projectRepo, projectControlRepo, auditRepo)
	dpiaService := service.NewDPIAService(projectRepo, projectControlRepo, measureRepo, dpiaRepo)
	measureService := service.NewMeasureService(projectRepo, measureRepo)
	reportService := service.NewReportService(projectRepo, projectControlRepo, measureRepo, dpiaRepo)

	// Seed the catalog on startup when configured
	if cfg.SeedOnStartup {
		summary, err := seed.New(catalogRepo).Run(context.Background())
		if err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		logger.Info("catalog seeded",
			"standards", summary.Standards,
			"controlsCreated", summary.ControlsCreated,
			"controlsUpdated", summary.ControlsUpdated,
		)
	}

	// Initialize handlers
	guard := handler.NewGuard(userService)
	authHandler := handler.NewAuthHandler(userService, guard)
	projectHandler := handler.NewProjectHandler(guard, projectService)
	projectControlHandler := handler.NewProjectControlHandler(guard, projectControlService)
	standardHandler := handler.NewStandardHandler(guard, catalogService)
	auditHandler := handler.NewAuditHandler(guard, auditService)
	dpiaHandler := handler.NewDPIAHandler(guard, dpiaService)
	measureHandler := handler.NewMeasureHandler(guard, measureService)
	reportHandler := handler.NewReportHandler(guard, reportService)

	// Create router
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Prometheus endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(chimw.AllowContentType("application/json"))
				r.Post("/register", authHandler.RegisterHandler)
				r.Post("/login", authHandler.LoginHandler)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokenManager))

			r.Get("/auth/me", authHandler.MeHandler)
			r.Get("/dashboard", projectHandler.Dashboard)

			r.Route("/standards", func(r chi.Router) {
				r.Get("/", standardHandler.List)
				r.Get("/{id}", standardHandler.Get)
			})
			r.Get("/controls", standardHandler.SearchControls)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Patch("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)

					r.Get("/report", reportHandler.Compliance)

					r.Route("/controls", func(r chi.Router) {
						r.Get("/", projectControlHandler.List)
						r.Post("/", projectControlHandler.Add)
						r.Get("/{controlId}", projectControlHandler.Get)
						r.Patch("/{controlId}", projectControlHandler.Update)
						r.Delete("/{controlId}", projectControlHandler.Delete)
					})

					r.Route("/audits", func(r chi.Router) {
						r.Get("/", auditHandler.List)
						r.Post("/", auditHandler.Start)
						r.Get("/{auditId}", auditHandler.Get)
						r.Patch("/{auditId}", auditHandler.Complete)
						r.Delete("/{auditId}", auditHandler.Delete)
						r.Patch("/{auditId}/controls/{controlAuditId}", auditHandler.UpdateControlAudit)
					})

					r.Route("/dpia", func(r chi.Router) {
						r.Get("/", dpiaHandler.Get)
						r.Post("/", dpiaHandler.Create)
						r.Patch("/", dpiaHandler.Update)
						r.Delete("/", dpiaHandler.Delete)
						r.Get("/report", reportHandler.DPIA)
					})

					r.Route("/organizational-measures", func(r chi.Router) {
						r.Get("/", measureHandler.List)
						r.Post("/", measureHandler.Create)
						r.Get("/{measureId}", measureHandler.Get)
						r.Patch("/{measureId}", measureHandler.Update)
						r.Delete("/{measureId}", measureHandler.Delete)
					})
				})
			})
		})
	})

	// Create server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server error channel
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Shutdown channel
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	// Wait for shutdown or error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			// If shutdown times out, forcefully close
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.SearchPath,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.UserOrganization{},
		&model.Standard{},
		&model.Control{},
		&model.Project{},
		&model.ProjectControl{},
		&model.Audit{},
		&model.ControlAudit{},
		&model.DPIA{},
		&model.OrganizationalMeasure{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"requestID", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					err := errors.New("panic recovered")
					logger.Error("panic recovered",
						"error", err,
						"panic", rvr,
						"stack", string(debug.Stack()),
						"requestID", chimw.GetReqID(r.Context()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"ok":false,"error":"Internal server error"}`))
					return
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
