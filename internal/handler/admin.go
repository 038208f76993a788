package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creatorverse/internal/service"
	"github.com/sakif/creatorverse/internal/session"
)

// AdminHandler serves the admin area and the creator dashboard. The admin
// routes sit behind auth.RequireAdmin, the dashboard behind auth.RequireUser.
type AdminHandler struct {
	admin     *service.AdminService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, dashboard *service.DashboardService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, dashboard: dashboard, logger: logger}
}

// HandleAdminDashboard returns site-wide stats and recent rows.
//
// HTTP: GET /api/admin
func (h *AdminHandler) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.admin.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dash)
}

// HandleDeleteUser removes a user and everything they own.
//
// HTTP: DELETE /api/admin/users/{id}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "User deleted successfully")
}

// HandleDashboard returns the caller's ideas and schedules.
//
// HTTP: GET /api/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboard.Get(r.Context(), session.FromContext(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dash)
}
