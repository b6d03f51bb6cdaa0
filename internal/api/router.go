package api

import (
	"net/http"
	"time"

	"taskdiary/internal/api/handler"
	"taskdiary/internal/api/middleware"
	"taskdiary/internal/app/service"
	"taskdiary/internal/common/security"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	sessionService *service.SessionService,
	taskService *service.TaskService,
	diaryService *service.DiaryService,
	dashboardService *service.DashboardService,
	exportService *service.ExportService,
	renderer view.Renderer,
	flashes session.FlashStore,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Decodes the session cookie if present and puts the claims in the
	// context. Verification alone grants nothing; RequireSession checks the
	// claims against the session registry.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authMw := middleware.NewAuth(sessionService, flashes)

	// Public routes (logout included: it works for lapsed sessions too)
	authHandler := handler.NewAuthHandler(authService, sessionService, renderer, flashes)
	r.Group(func(public chi.Router) {
		authHandler.RegisterRoutes(public)
	})

	// Session-guarded routes
	r.Group(func(protected chi.Router) {
		protected.Use(authMw.RequireSession)

		dashboardHandler := handler.NewDashboardHandler(dashboardService, renderer, flashes)
		dashboardHandler.RegisterRoutes(protected,
			authMw.RequireRole(model.RoleStudent, model.RoleTeacher, model.RoleBusiness))

		taskHandler := handler.NewTaskHandler(taskService, exportService, renderer, flashes)
		taskHandler.RegisterRoutes(protected)

		diaryHandler := handler.NewDiaryHandler(diaryService, exportService, renderer, flashes)
		diaryHandler.RegisterRoutes(protected)
	})

	return r
}
