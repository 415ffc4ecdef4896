package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guestsnap/guestsnap/internal/models"
	"github.com/guestsnap/guestsnap/internal/storage"
	"gorm.io/gorm"
)

type UploadHandler struct {
	gdb      *gorm.DB
	store    storage.ObjectStore
	hub      *Hub
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(gdb *gorm.DB, store storage.ObjectStore, hub *Hub, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{gdb: gdb, store: store, hub: hub, maxBytes: maxBytes, logger: logger}
}

// multipartOverhead covers boundaries, part headers, and the two form
// fields accompanying the file, so the transport cap stays above the
// per-file ceiling without letting a grossly oversized body through.
const multipartOverhead = 10 << 10

// Upload accepts one anonymous guest submission: a multipart "media" file
// plus "projectId" and "guestName" fields. The size ceiling is enforced
// before anything is written to the media host, and the media row is a
// single INSERT, so concurrent guests can't lose each other's uploads.
func (h *UploadHandler) Upload(ctx *gin.Context) {
	// Cap the body before multipart parsing so an oversized upload is cut
	// off at the transport instead of being buffered first.
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxBytes+multipartOverhead)

	file, err := ctx.FormFile("media")

	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the upload size limit"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Media file is required"})
		return
	}

	guestName := strings.TrimSpace(ctx.PostForm("guestName"))

	if guestName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Guest name is required"})
		return
	}

	projectID := strings.TrimSpace(ctx.PostForm("projectId"))

	if projectID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	if file.Size > h.maxBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the upload size limit"})
		return
	}

	var project models.Project

	if err := h.gdb.Where("public_id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			h.logger.Error("fetching project", "error", err, "project_id", projectID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	src, err := file.Open()

	if err != nil {
		h.logger.Error("opening uploaded file", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	// Kind is fixed here, once, from the declared content type.
	contentType := file.Header.Get("Content-Type")
	kind := models.MediaKindVideo
	if strings.HasPrefix(contentType, "image/") {
		kind = models.MediaKindImage
	}

	key := storage.NewObjectKey(project.PublicID, file.Filename)

	url, err := h.store.Put(ctx.Request.Context(), key, contentType, src, file.Size)

	if err != nil {
		h.logger.Error("storing uploaded file", "error", err, "project_id", projectID, "key", key)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	media := models.Media{
		ProjectID:  project.ID,
		GuestName:  guestName,
		Kind:       kind,
		URL:        url,
		StorageKey: key,
	}

	if err := h.gdb.Create(&media).Error; err != nil {
		h.logger.Error("creating media entry", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save upload"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastRefresh(project.PublicID)
	}

	ctx.JSON(http.StatusCreated, newMediaResponse(media))
}
