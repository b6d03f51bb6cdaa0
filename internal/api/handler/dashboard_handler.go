package handler

import (
	"net/http"

	"taskdiary/internal/api/middleware"
	"taskdiary/internal/app/service"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	pages
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService, renderer view.Renderer, flashes session.FlashStore) *DashboardHandler {
	return &DashboardHandler{
		pages:            pages{renderer: renderer, flashes: flashes},
		dashboardService: dashboardService,
	}
}

// RegisterRoutes wires the landing page and the dashboard. The dashboard
// additionally goes through the role gate, which rejects unknown roles and
// stocks the context with the live-fetched role.
func (h *DashboardHandler) RegisterRoutes(r chi.Router, roleGate func(http.Handler) http.Handler) {
	r.Get("/", h.index)
	r.With(roleGate).Get("/dashboard", h.dashboard)
}

// index renders the landing counters. A store failure degrades to zeroed
// stats with a notice rather than an error page.
func (h *DashboardHandler) index(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Index(r.Context(), identity)
	if err != nil {
		h.flash(w, r, "An error occurred while loading the dashboard.", "error")
		stats = &service.IndexStats{}
	}
	h.render(w, r, "index", map[string]interface{}{"stats": stats})
}

// dashboard renders the role-specific view. The role was resolved live by
// the RequireRole middleware on this route.
func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok {
		h.flashRedirect(w, r, "/login", "Invalid user role", "error")
		return
	}
	viewName, ok := role.DashboardView()
	if !ok {
		h.flashRedirect(w, r, "/login", "Invalid user role", "error")
		return
	}

	data, err := h.dashboardService.Dashboard(r.Context(), identity)
	if err != nil {
		h.flashRedirect(w, r, "/", "An error occurred while loading the dashboard.", "error")
		return
	}
	h.render(w, r, viewName, map[string]interface{}{"dashboard": data, "theme": string(role)})
}
