package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdiagnosis/internal/logger"
	"smartdiagnosis/internal/model"
	"smartdiagnosis/internal/service"
)

type fakeService struct {
	predictions []model.DiseasePrediction
	predictErr  error
	symptoms    []model.SymptomResponse
	symptomsErr error
	lastRequest *model.PredictionRequest
	lastUser    string
}

func (f *fakeService) Predict(_ context.Context, req *model.PredictionRequest) ([]model.DiseasePrediction, error) {
	f.lastRequest = req
	return f.predictions, f.predictErr
}

func (f *fakeService) DiseaseInfo(name string) (*model.DiseaseInfoResponse, error) {
	if strings.EqualFold(name, "migraine") {
		return &model.DiseaseInfoResponse{Disease: "Migraine", Description: "A recurring headache."}, nil
	}
	return nil, &service.UnknownDiseaseError{Name: name}
}

func (f *fakeService) UserSymptoms(_ context.Context, userID string) ([]model.SymptomResponse, error) {
	f.lastUser = userID
	return f.symptoms, f.symptomsErr
}

func (f *fakeService) Health(context.Context) model.HealthResponse {
	return model.HealthResponse{Status: "healthy", ModelsLoaded: true, MongoDB: "connected", StoreBackend: "memory"}
}

func newTestRouter(svc PredictionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	predictions := NewPredictionHandler(svc, logger.Discard())
	health := NewHealthHandler(svc, model.VersionResponse{Version: "1.2.3", GitCommit: "abc", BuildTime: "now"})

	router.POST("/predict", predictions.Predict)
	router.GET("/disease-info/:name", predictions.DiseaseInfo)
	router.GET("/symptoms/:user_id", predictions.UserSymptoms)
	router.GET("/health", health.Health)
	router.GET("/version", health.Version)
	return router
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestPredictReturnsRankedDiseases(t *testing.T) {
	svc := &fakeService{predictions: []model.DiseasePrediction{
		{Disease: "Migraine", Confidence: 0.7, Info: "A recurring headache."},
		{Disease: "Malaria", Confidence: 0.2, Info: "No additional information available."},
	}}
	router := newTestRouter(svc)

	w := serve(router, http.MethodPost, "/predict", `{"symptoms":"throbbing headache and nausea","top_n":2,"user_id":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.DiseasePrediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, svc.predictions, got)

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "throbbing headache and nausea", svc.lastRequest.Symptoms)
	require.NotNil(t, svc.lastRequest.TopN)
	assert.Equal(t, 2, *svc.lastRequest.TopN)
	require.NotNil(t, svc.lastRequest.UserID)
	assert.Equal(t, "u1", *svc.lastRequest.UserID)
}

func TestPredictEmptyList(t *testing.T) {
	router := newTestRouter(&fakeService{predictions: []model.DiseasePrediction{}})

	w := serve(router, http.MethodPost, "/predict", `{"symptoms":"headache for two days","top_n":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPredictBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"symptoms":`},
		{"missing symptoms", `{"top_n":3}`},
		{"wrong type", `{"symptoms":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			w := serve(newTestRouter(svc), http.MethodPost, "/predict", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.True(t, strings.HasPrefix(decodeDetail(t, w), "Invalid request: "))
			assert.Nil(t, svc.lastRequest)
		})
	}
}

func TestPredictValidationError(t *testing.T) {
	msg := "Please provide more detailed symptoms (at least 10 characters)"
	router := newTestRouter(&fakeService{predictErr: &service.ValidationError{Message: msg}})

	w := serve(router, http.MethodPost, "/predict", `{"symptoms":"cough"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msg, decodeDetail(t, w))
}

func TestPredictInternalError(t *testing.T) {
	router := newTestRouter(&fakeService{predictErr: errors.New("prediction failed: model not loaded")})

	w := serve(router, http.MethodPost, "/predict", `{"symptoms":"headache for two days"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "prediction failed: model not loaded", decodeDetail(t, w))
}

func TestDiseaseInfo(t *testing.T) {
	router := newTestRouter(&fakeService{})

	w := serve(router, http.MethodGet, "/disease-info/migraine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"disease":"Migraine","description":"A recurring headache."}`, w.Body.String())

	w = serve(router, http.MethodGet, "/disease-info/Unknown%20Disease", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Disease not found", decodeDetail(t, w))
}

func TestUserSymptoms(t *testing.T) {
	svc := &fakeService{symptoms: []model.SymptomResponse{
		{Name: "headache", Date: "2026-01-02T03:04:05Z"},
	}}
	router := newTestRouter(svc)

	w := serve(router, http.MethodGet, "/symptoms/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.lastUser)

	var got []model.SymptomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, svc.symptoms, got)
}

func TestUserSymptomsStoreFailure(t *testing.T) {
	router := newTestRouter(&fakeService{symptomsErr: errors.New("store offline")})

	w := serve(router, http.MethodGet, "/symptoms/u1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "store offline", decodeDetail(t, w))
}

func TestUserSymptomsBlankID(t *testing.T) {
	svc := &fakeService{}
	w := serve(newTestRouter(svc), http.MethodGet, "/symptoms/%20", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id is required", decodeDetail(t, w))
	assert.Empty(t, svc.lastUser)
}

func TestHealthAndVersion(t *testing.T) {
	router := newTestRouter(&fakeService{})

	w := serve(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","models_loaded":true,"mongodb":"connected","store_backend":"memory"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1.2.3","git_commit":"abc","build_time":"now"}`, w.Body.String())
}

func TestPredictBodyTooLarge(t *testing.T) {
	svc := &fakeService{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)
		c.Next()
	})
	router.POST("/predict", NewPredictionHandler(svc, logger.Discard()).Predict)

	w := serve(router, http.MethodPost, "/predict", `{"symptoms":"headache and fever for three days"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body exceeds 16 bytes", decodeDetail(t, w))
	assert.Nil(t, svc.lastRequest)
}
