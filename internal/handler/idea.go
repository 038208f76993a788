package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/service"
	"github.com/sakif/creatorverse/internal/session"
)

// IdeaHandler serves a user's saved ideas and the idea generator. Every
// route sits behind auth.RequireUser, so the principal is always a user.
type IdeaHandler struct {
	ideas  *service.IdeaService
	logger *slog.Logger
}

func NewIdeaHandler(ideas *service.IdeaService, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, logger: logger}
}

// HandleList returns the caller's ideas, newest first.
//
// HTTP: GET /api/ideas
func (h *IdeaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.ideas.List(r.Context(), session.FromContext(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ideas)
}

type ideaCreatedResponse struct {
	Message string      `json:"message"`
	ID      string      `json:"id"`
	Idea    *model.Idea `json:"idea"`
}

// HandleCreate saves an idea.
//
// HTTP: POST /api/ideas
// REQUEST BODY: {"title": "...", "description": "...", "category": "Video"}
func (h *IdeaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	idea, err := h.ideas.Add(r.Context(), session.FromContext(r.Context()).ID, service.IdeaInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, ideaCreatedResponse{
		Message: "Idea added successfully",
		ID:      idea.ID,
		Idea:    idea,
	})
}

// HandleDelete removes one of the caller's ideas.
//
// HTTP: DELETE /api/ideas/{id}
func (h *IdeaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.ideas.Delete(r.Context(), session.FromContext(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Idea deleted successfully")
}

// HandleGenerate returns five ideas for a topic. It always succeeds for a
// non-empty topic; generator outages are answered from the fallback set.
//
// HTTP: POST /api/ideas/generate
// REQUEST BODY: {"topic": "home workouts"}
func (h *IdeaHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.ideas.Generate(r.Context(), req.Topic)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

