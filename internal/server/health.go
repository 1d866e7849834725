package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/analytics/internal/database"
)

// HealthHandler reports service and database health plus host resource usage.
type HealthHandler struct {
	db          *database.DB
	log         zerolog.Logger
	startupTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		log:         log.With().Str("handler", "health").Logger(),
		startupTime: time.Now(),
	}
}

// HandleHealth returns service health
// GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "ok"
	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		status = "degraded"
		dbStatus = err.Error()
	}

	dbInfo := map[string]interface{}{"status": dbStatus}
	if stats, err := h.db.GetStats(); err == nil {
		dbInfo["size_bytes"] = stats.SizeBytes
		dbInfo["wal_size_bytes"] = stats.WALSizeBytes
		dbInfo["page_count"] = stats.PageCount
	}

	cpuPct, memPct := h.systemStats()

	response := map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"database":       dbInfo,
		"system": map[string]interface{}{
			"cpu_percent": cpuPct,
			"ram_percent": memPct,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// systemStats returns CPU and RAM usage percentages. The short sampling
// interval keeps the endpoint responsive for pollers.
func (h *HealthHandler) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
