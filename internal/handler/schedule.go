package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/service"
	"github.com/sakif/creatorverse/internal/session"
)

type ScheduleHandler struct {
	schedules *service.ScheduleService
	logger    *slog.Logger
}

func NewScheduleHandler(schedules *service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// HandleList returns the caller's calendar, ordered by date.
//
// HTTP: GET /api/schedules
func (h *ScheduleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.schedules.List(r.Context(), session.FromContext(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, schedules)
}

type scheduleCreatedResponse struct {
	Message  string          `json:"message"`
	ID       string          `json:"id"`
	Schedule *model.Schedule `json:"schedule"`
}

// HTTP: POST /api/schedules
func (h *ScheduleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sched, err := h.schedules.Add(r.Context(), session.FromContext(r.Context()).ID, req.Date, req.Task)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, scheduleCreatedResponse{
		Message:  "Schedule added successfully",
		ID:       sched.ID,
		Schedule: sched,
	})
}

// HTTP: DELETE /api/schedules/{id}
func (h *ScheduleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.schedules.Delete(r.Context(), session.FromContext(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Schedule deleted successfully")
}
