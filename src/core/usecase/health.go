package usecase

import (
	"context"
	"log/slog"
	"time"

	"catalog/src/core/ports"
)

// HealthService handles health check logic.
type HealthService struct {
	db  ports.DatabaseProbe
	log *slog.Logger
}

// NewHealthService creates a new HealthService.
func NewHealthService(db ports.DatabaseProbe, log *slog.Logger) *HealthService {
	return &HealthService{
		db:  db,
		log: log,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Healthy reports whether every component is up.
func (h *HealthStatus) Healthy() bool {
	return h.Status == "ok"
}

// Check performs a health check of all application components.
// Returns the overall health status.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth),
	}

	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			status.Status = "degraded"
			status.Components["database"] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Components["database"] = ComponentHealth{Status: "healthy"}
		}
	}

	return status
}

// DatabaseTime checks the database and returns its clock.
func (s *HealthService) DatabaseTime(ctx context.Context) (time.Time, error) {
	if err := s.db.Health(ctx); err != nil {
		return time.Time{}, err
	}
	return s.db.Now(ctx)
}
