package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sangkips/clientes-service/internal/domains/customers/models"
)

// StoreGuard is the view of the connection guard the health check needs.
type StoreGuard interface {
	Available() bool
	Reason() string
	WithConnection(ctx context.Context, op func(ctx context.Context, conn models.DBTX) error) error
}

type QueuePinger interface {
	Ping() error
}

type Handler struct {
	guard StoreGuard
	queue QueuePinger
}

// NewHandler builds the health handler. queue may be nil when registration
// events are disabled.
func NewHandler(guard StoreGuard, queue QueuePinger) *Handler {
	return &Handler{
		guard: guard,
		queue: queue,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents a single health check
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health performs health checks on the database and, when configured, RabbitMQ
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	overallHealthy := true

	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		overallHealthy = false
	}

	queueCheck := h.checkQueue()
	checks["queue"] = queueCheck
	if queueCheck.Status == "unhealthy" {
		overallHealthy = false
	}

	status := "healthy"
	if !overallHealthy {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	statusCode := http.StatusOK
	if !overallHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// checkDatabase runs a trivial query through the guard
func (h *Handler) checkDatabase(ctx context.Context) Check {
	if h.guard == nil || !h.guard.Available() {
		msg := "database not connected"
		if h.guard != nil && h.guard.Reason() != "" {
			msg += ": " + h.guard.Reason()
		}
		return Check{
			Status:  "unhealthy",
			Message: msg,
		}
	}

	err := h.guard.WithConnection(ctx, func(ctx context.Context, conn models.DBTX) error {
		var result int
		return conn.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	})
	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database query failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "database is accessible",
	}
}

// checkQueue checks if RabbitMQ is accessible
func (h *Handler) checkQueue() Check {
	if h.queue == nil {
		return Check{
			Status:  "disabled",
			Message: "registration events not configured",
		}
	}

	if err := h.queue.Ping(); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "queue connection failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "queue is accessible",
	}
}
