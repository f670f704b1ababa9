package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/grundwerk/grundwerk/internal/auth"
	"github.com/grundwerk/grundwerk/internal/config"
	"github.com/grundwerk/grundwerk/internal/email"
	"github.com/grundwerk/grundwerk/internal/middleware"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/grundwerk/grundwerk/internal/service"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	router http.Handler
	db     *gorm.DB
}

// newTestEnv wires the full API against an in-memory sqlite database, with
// the same route tree the server mounts.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiryPeriod = time.Hour

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	projectControlRepo := repository.NewProjectControlRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	dpiaRepo := repository.NewDPIARepository(db)
	measureRepo := repository.NewMeasureRepository(db)

	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryPeriod)
	emailService, err := email.NewEmailService(cfg)
	require.NoError(t, err)

	userService := service.NewUserService(userRepo, orgRepo, auth.NewPasswordHasher(), tokenManager, emailService, cfg)
	projectService := service.NewProjectService(projectRepo, projectControlRepo, catalogRepo)
	projectControlService := service.NewProjectControlService(projectRepo, projectControlRepo, catalogRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	auditService := service.NewAuditService(projectRepo, projectControlRepo, auditRepo)
	dpiaService := service.NewDPIAService(projectRepo, projectControlRepo, measureRepo, dpiaRepo)
	measureService := service.NewMeasureService(projectRepo, measureRepo)
	reportService := service.NewReportService(projectRepo, projectControlRepo, measureRepo, dpiaRepo)

	guard := NewGuard(userService)
	authHandler := NewAuthHandler(userService, guard)
	projectHandler := NewProjectHandler(guard, projectService)
	projectControlHandler := NewProjectControlHandler(guard, projectControlService)
	standardHandler := NewStandardHandler(guard, catalogService)
	auditHandler := NewAuditHandler(guard, auditService)
	dpiaHandler := NewDPIAHandler(guard, dpiaService)
	measureHandler := NewMeasureHandler(guard, measureService)
	reportHandler := NewReportHandler(guard, reportService)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.RegisterHandler)
		r.Post("/auth/login", authHandler.LoginHandler)

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

	return &testEnv{router: r, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// register creates a user with their own organization and returns the token.
func (e *testEnv) register(t *testing.T, emailAddr, orgName string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":            emailAddr,
		"name":             "Jane Doe",
		"password":         "correct-horse-battery",
		"organizationName": orgName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// seedStandard inserts a catalog standard with n controls directly.
func (e *testEnv) seedStandard(t *testing.T, shortName string, n int) *model.Standard {
	t.Helper()

	standard := &model.Standard{
		Name:      shortName + " Test Standard",
		ShortName: shortName,
		Version:   "2026",
		IsGlobal:  true,
	}
	require.NoError(t, e.db.Create(standard).Error)

	for i := 0; i < n; i++ {
		control := model.Control{
			StandardID:  standard.ID,
			Code:        string(rune('A'+i)) + ".1",
			Name:        "Control " + string(rune('A'+i)),
			Description: "Test control",
			Category:    "General",
		}
		require.NoError(t, e.db.Create(&control).Error)
		standard.Controls = append(standard.Controls, control)
	}
	return standard
}
