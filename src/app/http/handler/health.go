// Package handler contains HTTP handlers for the API.
// Handlers are responsible for:
// - Parsing and validating HTTP requests
// - Calling use case methods
// - Converting results to HTTP responses
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalog/src/app/http/response"
	"catalog/src/app/middleware"
	"catalog/src/core/usecase"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	healthService *usecase.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *usecase.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusMessage is the response for the server and database health endpoints.
type StatusMessage struct {
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
	CurrentTime time.Time `json:"current_time,omitzero"`
}

// Health returns the health status of the application.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Server reports that the process is serving requests.
// GET /health/server
func (h *HealthHandler) Server(c *gin.Context) {
	response.OK(c, StatusMessage{
		Message:   "Server is running!",
		Timestamp: time.Now().UTC(),
	})
}

// Database probes the pool and returns the database clock.
// GET /health/db
func (h *HealthHandler) Database(c *gin.Context) {
	now, err := h.healthService.DatabaseTime(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.ServiceUnavailable(c, "Database connection failed", middleware.GetRequestID(c))
		return
	}
	response.OK(c, StatusMessage{
		Message:     "Database connected successfully!",
		CurrentTime: now,
	})
}

// DetailedHealth returns detailed health status including all components.
// GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
