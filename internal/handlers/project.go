package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guestsnap/guestsnap/internal/config"
	"github.com/guestsnap/guestsnap/internal/middleware"
	"github.com/guestsnap/guestsnap/internal/models"
	"github.com/guestsnap/guestsnap/internal/qr"
	"github.com/guestsnap/guestsnap/internal/storage"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type ProjectHandler struct {
	gdb    *gorm.DB
	store  storage.ObjectStore
	cfg    *config.Config
	logger *slog.Logger
}

func NewProjectHandler(gdb *gorm.DB, store storage.ObjectStore, cfg *config.Config, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{gdb: gdb, store: store, cfg: cfg, logger: logger}
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	userID, err := middleware.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)

	if name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	publicID := uuid.NewString()
	guestURL := fmt.Sprintf("%s/guest/%s", strings.TrimRight(h.cfg.FrontendOrigin, "/"), publicID)

	qrCode, err := qr.DataURL(guestURL)

	if err != nil {
		h.logger.Error("encoding guest QR", "error", err, "project_id", publicID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	project := models.Project{
		PublicID: publicID,
		Name:     name,
		OwnerID:  userID,
		QRCode:   qrCode,
	}

	if err := h.gdb.Create(&project).Error; err != nil {
		h.logger.Error("creating project", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	userID, err := middleware.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if err := h.gdb.Preload("Media").
		Where("owner_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error; err != nil {
		h.logger.Error("listing projects", "error", err, "user_id", userID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, newProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

// Get is public: a guest who scanned the QR code fetches the project by its
// opaque id before uploading. Knowledge of the id is the only gate.
func (h *ProjectHandler) Get(ctx *gin.Context) {
	projectID := ctx.Param("project_id")

	var project models.Project

	if err := h.gdb.Preload("Media").Where("public_id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			h.logger.Error("fetching project", "error", err, "project_id", projectID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

// Latest returns the newest project across all owners. This backs the
// "join the latest event" guest shortcut and is deliberately not scoped to
// a tenant; only the id, name, and creation time are exposed.
func (h *ProjectHandler) Latest(ctx *gin.Context) {
	var project models.Project

	if err := h.gdb.Order("created_at DESC, id DESC").First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No projects have been created yet"})
		} else {
			h.logger.Error("fetching latest project", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve latest project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":        project.PublicID,
		"name":      project.Name,
		"createdAt": project.CreatedAt.Format(time.RFC3339),
	})
}

// Delete removes the project and its media rows, then cleans up the stored
// objects best-effort. A missing project and someone else's project both
// answer 404, so callers can't discover which ids exist.
func (h *ProjectHandler) Delete(ctx *gin.Context) {
	userID, err := middleware.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID := ctx.Param("project_id")

	var project models.Project

	if err := h.gdb.Where("public_id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			h.logger.Error("fetching project", "error", err, "project_id", projectID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var media []models.Media

	if err := h.gdb.Where("project_id = ?", project.ID).Find(&media).Error; err != nil {
		h.logger.Error("fetching project media", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	if err := h.gdb.Where("project_id = ?", project.ID).Delete(&models.Media{}).Error; err != nil {
		h.logger.Error("deleting project media rows", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	if err := h.gdb.Delete(&project).Error; err != nil {
		h.logger.Error("deleting project", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	// The metadata deletion above is authoritative. Object cleanup failures
	// are logged and leave orphans behind; they never surface to the caller.
	for _, m := range media {
		if err := h.store.Delete(ctx.Request.Context(), m.StorageKey); err != nil {
			h.logger.Warn("deleting stored object", "error", err, "project_id", projectID, "key", m.StorageKey)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted",
		"deletedProject": gin.H{
			"id":   project.PublicID,
			"name": project.Name,
		},
	})
}

// Compile marks the project's final video. No transcoding happens; the
// reference is a deterministic placeholder path.
func (h *ProjectHandler) Compile(ctx *gin.Context) {
	userID, err := middleware.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID := ctx.Param("project_id")

	var project models.Project

	if err := h.gdb.Where("public_id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			h.logger.Error("fetching project", "error", err, "project_id", projectID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var mediaCount int64

	if err := h.gdb.Model(&models.Media{}).Where("project_id = ?", project.ID).Count(&mediaCount).Error; err != nil {
		h.logger.Error("counting project media", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compile project"})
		return
	}

	if mediaCount == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project has no media to compile"})
		return
	}

	finalVideo := project.PublicID + "/compiled.mp4"

	if err := h.gdb.Model(&project).Update("final_video", finalVideo).Error; err != nil {
		h.logger.Error("setting final video", "error", err, "project_id", projectID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compile project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Compilation complete",
		"finalVideo": finalVideo,
	})
}
