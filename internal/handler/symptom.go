package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserSymptoms handles GET /symptoms/:user_id
func (h *PredictionHandler) UserSymptoms(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		abortWithDetail(c, http.StatusBadRequest, "user_id is required")
		return
	}

	symptoms, err := h.svc.UserSymptoms(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("Failed to load symptoms")
		abortWithDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, symptoms)
}
