package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erplink/backend/internal/domain/erp"
	"github.com/erplink/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	backends  erp.BackendRegistry
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(backends erp.BackendRegistry) *SystemHandler {
	return &SystemHandler{
		backends:  backends,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes under the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/system")
	group.GET("/info", h.GetSystemInfo)
	group.GET("/ping", h.Ping)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name          string   `json:"name" example:"ERP Connector API"`
	Version       string   `json:"version" example:"1.0.0"`
	GoVersion     string   `json:"go_version" example:"go1.25.5"`
	Uptime        string   `json:"uptime" example:"1h30m45s"`
	ActiveBackend string   `json:"active_backend" example:"p21"`
	Backends      []string `json:"backends"`
}

// GetSystemInfo returns version, uptime and the configured backend set.
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "ERP Connector API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.backends != nil {
		if active, err := h.backends.Active(); err == nil {
			info.ActiveBackend = active.Name()
		}
		for _, b := range h.backends.ListBackends() {
			info.Backends = append(info.Backends, b.Name())
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping is a liveness check.
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
