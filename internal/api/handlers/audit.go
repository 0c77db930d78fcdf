package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger.With(zap.String("handler", "audit")),
	}
}

// DocumentHistory handles GET /documents/:id/audit.
func (h *AuditHandler) DocumentHistory(c *gin.Context) {
	entries, err := h.auditService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// LandHistory handles GET /lands/:landId/audit, the project-level
// activity feed.
func (h *AuditHandler) LandHistory(c *gin.Context) {
	entries, err := h.auditService.LandHistory(c.Request.Context(), c.Param("landId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
