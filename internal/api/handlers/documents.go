package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/api/middleware"
	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
)

type DocumentHandler struct {
	versionService *services.VersionService
	reviewService  *services.ReviewService
	logger         *zap.Logger
}

func NewDocumentHandler(versionService *services.VersionService, reviewService *services.ReviewService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		versionService: versionService,
		reviewService:  reviewService,
		logger:         logger.With(zap.String("handler", "document")),
	}
}

type appendVersionRequest struct {
	DocumentType string           `json:"document_type" binding:"required"`
	Slot         string           `json:"slot"`
	File         services.FileRef `json:"file" binding:"required"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// AppendVersion handles POST /lands/:landId/documents. The upload
// collaborator has already stored the bytes; the body carries the opaque
// file reference.
func (h *DocumentHandler) AppendVersion(c *gin.Context) {
	var req appendVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.ActorIDKey)
	doc, err := h.versionService.Append(c.Request.Context(), c.Param("landId"), req.DocumentType, req.Slot, req.File, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

// ListDocuments handles GET /lands/:landId/documents?type=...
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	groups, err := h.versionService.List(c.Request.Context(), c.Param("landId"), c.Query("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// StatusSummary handles GET /lands/:landId/documents/summary.
func (h *DocumentHandler) StatusSummary(c *gin.Context) {
	summary, err := h.versionService.StatusSummary(c.Request.Context(), c.Param("landId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetDocument handles GET /documents/:id.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.versionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// LockDocument handles POST /documents/:id/lock.
func (h *DocumentHandler) LockDocument(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.ActorIDKey)
	doc, err := h.reviewService.Lock(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// UnlockDocument handles POST /documents/:id/unlock.
func (h *DocumentHandler) UnlockDocument(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.ActorIDKey)
	doc, err := h.reviewService.Unlock(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// ArchiveDocument handles POST /documents/:id/archive.
func (h *DocumentHandler) ArchiveDocument(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.ActorIDKey)
	doc, err := h.reviewService.Archive(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// PurgeDocument handles DELETE /documents/:id, the administrative cascade
// removal.
func (h *DocumentHandler) PurgeDocument(c *gin.Context) {
	if err := h.versionService.Purge(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
