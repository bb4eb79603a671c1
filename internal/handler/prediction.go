package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smartdiagnosis/internal/model"
	"smartdiagnosis/internal/service"
)

// PredictionService is the service surface the HTTP layer uses.
type PredictionService interface {
	Predict(ctx context.Context, req *model.PredictionRequest) ([]model.DiseasePrediction, error)
	DiseaseInfo(name string) (*model.DiseaseInfoResponse, error)
	UserSymptoms(ctx context.Context, userID string) ([]model.SymptomResponse, error)
	Health(ctx context.Context) model.HealthResponse
}

// PredictionHandler handles prediction-related HTTP requests
type PredictionHandler struct {
	svc PredictionService
	log *logrus.Entry
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(svc PredictionService, log *logrus.Entry) *PredictionHandler {
	return &PredictionHandler{svc: svc, log: log}
}

// Predict handles POST /predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithDetail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		abortWithDetail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	predictions, err := h.svc.Predict(c.Request.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			abortWithDetail(c, http.StatusBadRequest, verr.Message)
			return
		}
		h.log.WithError(err).Error("Prediction failed")
		abortWithDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, predictions)
}

// DiseaseInfo handles GET /disease-info/:name
func (h *PredictionHandler) DiseaseInfo(c *gin.Context) {
	info, err := h.svc.DiseaseInfo(c.Param("name"))
	if err != nil {
		var unknown *service.UnknownDiseaseError
		if errors.As(err, &unknown) {
			abortWithDetail(c, http.StatusNotFound, "Disease not found")
			return
		}
		abortWithDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, info)
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Detail: detail})
}
