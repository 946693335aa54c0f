package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/iconidentify/vidtoot/internal/domain"
	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
	"github.com/iconidentify/vidtoot/pkg/ytdlp"
)

var startTime = time.Now()

// jobCounter reports job tallies for the stats endpoint.
type jobCounter interface {
	CountByStatus() map[domain.JobStatus]int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	jobs     jobCounter
	dataPath string
	version  string

	// Tool probes, replaceable in tests.
	ytdlpAvailable  func() bool
	ffmpegAvailable func() bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(jobs jobCounter, dataPath, version string) *HealthHandler {
	return &HealthHandler{
		jobs:            jobs,
		dataPath:        dataPath,
		version:         version,
		ytdlpAvailable:  ytdlp.IsAvailable,
		ffmpegAvailable: ffmpeg.IsAvailable,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live handles GET /health/live - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /health/ready - readiness probe. The service is ready
// when its external tools are on PATH and the data directory is writable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"yt_dlp":    "ok",
		"ffmpeg":    "ok",
		"data_path": "ok",
	}
	healthy := true

	if !h.ytdlpAvailable() {
		checks["yt_dlp"] = "yt-dlp not found in PATH"
		healthy = false
	}
	if !h.ffmpegAvailable() {
		checks["ffmpeg"] = "ffmpeg not found in PATH"
		healthy = false
	}
	if err := h.checkDataPath(); err != nil {
		checks["data_path"] = err.Error()
		healthy = false
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeHealthJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// checkDataPath verifies the history directory exists and accepts writes.
func (h *HealthHandler) checkDataPath() error {
	if err := os.MkdirAll(h.dataPath, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(h.dataPath, ".readycheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// SystemStats contains system resource statistics.
type SystemStats struct {
	Version        string         `json:"version"`
	Uptime         int64          `json:"uptime_seconds"`
	UptimeHuman    string         `json:"uptime_human"`
	Jobs           map[string]int `json:"jobs"`
	NumGoroutines  int            `json:"num_goroutines"`
	NumCPU         int            `json:"num_cpu"`
	MemAllocMB     int64          `json:"mem_alloc_mb"`
	MemSysMB       int64          `json:"mem_sys_mb"`
	DiskTotalBytes int64          `json:"disk_total_bytes"`
	DiskFreeBytes  int64          `json:"disk_free_bytes"`
	DiskUsedBytes  int64          `json:"disk_used_bytes"`
	DiskUsedPct    float64        `json:"disk_used_pct"`
	DataPath       string         `json:"data_path"`
}

// Stats handles GET /health/stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)

	counts := h.jobs.CountByStatus()
	jobStats := make(map[string]int, 4)
	for _, st := range []domain.JobStatus{
		domain.JobStatusPending,
		domain.JobStatusProcessing,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	} {
		jobStats[string(st)] = counts[st]
	}

	stats := SystemStats{
		Version:       h.version,
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		Jobs:          jobStats,
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		MemSysMB:      int64(m.Sys / 1024 / 1024),
		DataPath:      h.dataPath,
	}

	total, free, used, usedPct := getDiskStats(h.dataPath)
	stats.DiskTotalBytes = total
	stats.DiskFreeBytes = free
	stats.DiskUsedBytes = used
	stats.DiskUsedPct = usedPct

	writeHealthJSON(w, http.StatusOK, stats)
}

func writeHealthJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
