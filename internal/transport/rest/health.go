package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// HealthHandler reports readiness of both databases the bridge depends on.
type HealthHandler struct {
	terminalDB  *sql.DB
	directoryDB *sql.DB
}

func NewHealthHandler(terminalDB, directoryDB *sql.DB) *HealthHandler {
	return &HealthHandler{terminalDB: terminalDB, directoryDB: directoryDB}
}

// pingHandler just says the service is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler pings both databases with a short deadline.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{},
	}

	resp.Components["terminal_db"] = h.checkDB(ctx, h.terminalDB)
	resp.Components["directory_db"] = h.checkDB(ctx, h.directoryDB)

	statusCode := http.StatusOK
	for _, entry := range resp.Components {
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkDB(ctx context.Context, db *sql.DB) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy, CheckedAt: start}

	if db == nil {
		entry.Status = HealthUnhealthy
		entry.Message = "not configured"
		return entry
	}
	if err := db.PingContext(ctx); err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}

	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}
