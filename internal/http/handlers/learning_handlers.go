package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

type LearningHandler struct {
	svc      service.LearningService
	sessions *session.Manager
}

func NewLearningHandler(svc service.LearningService, sessions *session.Manager) *LearningHandler {
	return &LearningHandler{svc: svc, sessions: sessions}
}

func (h *LearningHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Media streaming authorizes by signed token, not cookie, so links can
	// be opened in video players and downloads.
	r.Get("/media", h.media)

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(h.sessions, ""))
		r.Get("/content", h.listContent)
		r.Get("/content/{id}", h.getContent)
		r.Get("/content/{id}/stream", h.stream)
		r.Post("/content/{id}/link", h.signedLink)
		r.Get("/workshops", h.listWorkshops)
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(h.sessions, domain.RoleFarmer))
		r.Post("/workshops/{id}/register", h.register)
	})

	return r
}

func (h *LearningHandler) listContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ContentFilter{
		Kind:     q.Get("kind"),
		Language: q.Get("language"),
		Category: q.Get("category"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}

	contents, err := h.svc.ListContent(r.Context(), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"content": contents})
}

func (h *LearningHandler) getContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid content id")
		return
	}

	c, err := h.svc.GetContent(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

// stream serves the file with Range support for in-session playback.
func (h *LearningHandler) stream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid content id")
		return
	}

	c, err := h.svc.GetContent(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	h.serveFile(w, r, c)
}

func (h *LearningHandler) signedLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid content id")
		return
	}
	if _, err := h.svc.GetContent(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}

	token, err := h.svc.SignedLink(id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"url": "/learning/media?token=" + token,
	})
}

func (h *LearningHandler) media(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "missing token")
		return
	}

	id, err := h.svc.VerifyLink(token)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	c, err := h.svc.GetContent(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	h.serveFile(w, r, c)
}

func (h *LearningHandler) serveFile(w http.ResponseWriter, r *http.Request, c *domain.Content) {
	if c.FilePath == "" {
		response.NotFound(w, "content has no file")
		return
	}

	f, err := os.Open(c.FilePath)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to open content file", "error", err, "content_id", c.ID)
		response.NotFound(w, "file not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.InternalError(w, "stat failed")
		return
	}

	if c.MimeType != "" {
		w.Header().Set("Content-Type", c.MimeType)
	}
	http.ServeContent(w, r, filepath.Base(c.FilePath), info.ModTime(), f)
}

func (h *LearningHandler) listWorkshops(w http.ResponseWriter, r *http.Request) {
	upcoming := r.URL.Query().Get("all") == ""
	workshops, err := h.svc.ListWorkshops(r.Context(), upcoming, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"workshops": workshops})
}

func (h *LearningHandler) register(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}

	reg, err := h.svc.RegisterForWorkshop(r.Context(), id, sessionFrom(r).AccountID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, reg)
}
