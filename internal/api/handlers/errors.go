package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindNotFound:           http.StatusNotFound,
	services.KindInvalidSlot:        http.StatusBadRequest,
	services.KindAlreadyLocked:      http.StatusConflict,
	services.KindNotLocked:          http.StatusConflict,
	services.KindAlreadyAssigned:    http.StatusConflict,
	services.KindInvalidTransition:  http.StatusConflict,
	services.KindStorageUnavailable: http.StatusServiceUnavailable,
}

// respondError maps an engine error kind to its HTTP status and a
// structured body the calling UI can translate into an actionable
// message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"kind":  string(kind),
		"error": err.Error(),
	})
}
