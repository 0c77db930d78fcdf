package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/api/middleware"
	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	logger            *zap.Logger
}

func NewAssignmentHandler(assignmentService *services.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger.With(zap.String("handler", "assignment")),
	}
}

type createAssignmentRequest struct {
	AssignedTo   string     `json:"assigned_to" binding:"required"`
	ReviewerRole string     `json:"reviewer_role" binding:"required"`
	TaskID       string     `json:"task_id"`
	Notes        string     `json:"notes"`
	DueDate      *time.Time `json:"due_date"`
	Priority     string     `json:"priority"`
}

type transitionRequest struct {
	Status models.AssignmentStatus `json:"status" binding:"required"`
}

// Create handles POST /documents/:id/assignments.
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), services.CreateAssignmentInput{
		DocumentID:   c.Param("id"),
		AssignedTo:   req.AssignedTo,
		AssignedBy:   c.GetString(middleware.ActorIDKey),
		ReviewerRole: req.ReviewerRole,
		TaskID:       req.TaskID,
		Notes:        req.Notes,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": assignment})
}

// Transition handles POST /assignments/:id/transition.
func (h *AssignmentHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString(middleware.ActorIDKey)
	assignment, err := h.assignmentService.Transition(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignment})
}

// ListForReviewer handles GET /reviewers/:reviewerId/assignments?status=...
func (h *AssignmentHandler) ListForReviewer(c *gin.Context) {
	status := models.AssignmentStatus(c.Query("status"))
	assignments, err := h.assignmentService.ListForReviewer(c.Request.Context(), c.Param("reviewerId"), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// ListForLand handles GET /lands/:landId/assignments.
func (h *AssignmentHandler) ListForLand(c *gin.Context) {
	assignments, err := h.assignmentService.ListForLand(c.Request.Context(), c.Param("landId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}
