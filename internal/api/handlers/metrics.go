package handlers

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rankinbc/leadgen/internal/motif"
)

// Running generation counters, fed by the generate handler.
var (
	generationsServed atomic.Uint64
	notesGenerated    atomic.Uint64
)

type MetricsHandler struct {
	startTime time.Time
	version   string
}

func NewMetricsHandler(version string) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
	}
}

type MetricsResponse struct {
	Status    string         `json:"status"`
	Uptime    string         `json:"uptime"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	StartTime string         `json:"start_time"`
	System    SystemMetrics  `json:"system"`
	Service   ServiceMetrics `json:"service"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	NumGC        uint32 `json:"num_gc"`
}

// ServiceMetrics summarizes what the generator has produced since startup.
type ServiceMetrics struct {
	Genres            []string `json:"genres"`
	GenerationsServed uint64   `json:"generations_served"`
	NotesGenerated    uint64   `json:"notes_generated"`
}

const bytesToMB = 1024 * 1024

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Uptime:    time.Since(h.startTime).Round(10 * time.Millisecond).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   m.Alloc / bytesToMB,
			NumGC:        m.NumGC,
		},
		Service: ServiceMetrics{
			Genres:            motif.KnownGenres(),
			GenerationsServed: generationsServed.Load(),
			NotesGenerated:    notesGenerated.Load(),
		},
	})
}
