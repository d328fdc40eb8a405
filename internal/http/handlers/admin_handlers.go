package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/response"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

// maxUploadBytes caps learning content uploads at 512 MiB.
const maxUploadBytes = 512 << 20

type AdminHandler struct {
	admin     service.AdminService
	learning  service.LearningService
	market    service.MarketService
	sessions  *session.Manager
	uploadDir string
}

func NewAdminHandler(
	admin service.AdminService,
	learning service.LearningService,
	market service.MarketService,
	sessions *session.Manager,
	uploadDir string,
) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		learning:  learning,
		market:    market,
		sessions:  sessions,
		uploadDir: uploadDir,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(SessionAuth(h.sessions, domain.RoleAdmin))

	r.Post("/experts", h.createExpert)
	r.Get("/experts", h.listExperts)
	r.Patch("/experts/{id}/status", h.setExpertStatus)
	r.Patch("/experts/{id}/active", h.setExpertActive)

	r.Get("/farmers", h.listFarmers)
	r.Delete("/farmers/{id}", h.deleteFarmer)

	r.Post("/content", h.uploadContent)
	r.Delete("/content/{id}", h.deleteContent)

	r.Post("/workshops", h.createWorkshop)

	r.Post("/market/prices", h.upsertPrice)

	return r
}

func (h *AdminHandler) createExpert(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateExpertRequest
	if !decode(w, r, &req) {
		return
	}

	expert, err := h.admin.CreateExpert(r.Context(), &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, expert.ToInfo())
}

func (h *AdminHandler) listExperts(w http.ResponseWriter, r *http.Request) {
	experts, err := h.admin.ListExperts(r.Context(), r.URL.Query().Get("category"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"experts": experts})
}

func (h *AdminHandler) setExpertStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid expert id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.admin.SetExpertStatus(r.Context(), id, req.Status); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

func (h *AdminHandler) setExpertActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid expert id")
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.admin.SetExpertActive(r.Context(), id, req.Active); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *AdminHandler) listFarmers(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.admin.ListFarmers(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"farmers": farmers})
}

func (h *AdminHandler) deleteFarmer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid farmer id")
		return
	}

	if err := h.admin.DeleteFarmer(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "farmer deleted"})
}

// uploadContent accepts multipart form fields (title, title_hi, kind,
// language, category) plus a "file" part stored under the upload dir.
func (h *AdminHandler) uploadContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	c := &domain.Content{
		Title:    r.FormValue("title"),
		TitleHi:  r.FormValue("title_hi"),
		Kind:     r.FormValue("kind"),
		Language: r.FormValue("language"),
		Category: r.FormValue("category"),
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()

		path, size, saveErr := h.saveUpload(file, header.Filename)
		if saveErr != nil {
			logger.ErrorContext(r.Context(), "failed to store upload", "error", saveErr)
			response.InternalError(w, "failed to store file")
			return
		}
		c.FilePath = path
		c.SizeBytes = size
		c.MimeType = header.Header.Get("Content-Type")
	} else if c.Kind != domain.ContentArticle {
		response.BadRequest(w, "file is required for video and pdf content")
		return
	}

	created, err := h.learning.CreateContent(r.Context(), c)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) saveUpload(src io.Reader, original string) (string, int64, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", 0, err
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), filepath.Ext(original))
	path := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}
	return path, size, nil
}

func (h *AdminHandler) deleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid content id")
		return
	}

	if err := h.learning.DeleteContent(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "content deleted"})
}

func (h *AdminHandler) createWorkshop(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkshopRequest
	if !decode(w, r, &req) {
		return
	}

	workshop, err := h.learning.CreateWorkshop(r.Context(), &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, workshop)
}

func (h *AdminHandler) upsertPrice(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertPriceRequest
	if !decode(w, r, &req) {
		return
	}

	price, err := h.market.Upsert(r.Context(), &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, price)
}
