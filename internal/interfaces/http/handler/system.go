package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/dto"
)

// Pinger reports whether the historical store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        Pinger
	caps      coding.SourceCapabilities
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, caps coding.SourceCapabilities) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
		caps:      caps,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name         string                    `json:"name"`
	Version      string                    `json:"version"`
	GoVersion    string                    `json:"go_version"`
	Uptime       string                    `json:"uptime"`
	Capabilities coding.SourceCapabilities `json:"capabilities"`
}

// GetSystemInfo returns version, uptime and the probed schema capabilities
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:         "Voucher Coding API",
		Version:      "1.0.0",
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Capabilities: h.caps,
	}
	h.Success(c, info)
}

// Health reports liveness and database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, dto.NewSuccessResponse(gin.H{"status": status}))
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
}
