package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/application/backup"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
)

// DatabaseProbe reports database reachability and pool usage
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// BackupRunner takes a database backup
type BackupRunner interface {
	Run(ctx context.Context) (*backup.Result, error)
}

// SystemHandler handles health and maintenance endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	db        DatabaseProbe
	backups   BackupRunner
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, db DatabaseProbe, backups BackupRunner) *SystemHandler {
	return &SystemHandler{
		name:      name,
		db:        db,
		backups:   backups,
		startTime: time.Now(),
	}
}

// RegisterRoutes mounts the system routes under /system
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/health", h.Health)
	system.POST("/backup", h.Backup)
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string                       `json:"status"`
	Name      string                       `json:"name"`
	GoVersion string                       `json:"go_version"`
	Uptime    string                       `json:"uptime"`
	Database  string                       `json:"database"`
	Pool      *persistence.ConnectionStats `json:"pool,omitempty"`
}

// Health pings the database. An unreachable database answers 503.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "up",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		body := dto.NewErrorResponseWithRequestID("DATABASE_UNAVAILABLE", "Database is unreachable", getRequestID(c))
		body.Data = resp
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	h.Success(c, resp)
}

// Backup snapshots the database to object storage
func (h *SystemHandler) Backup(c *gin.Context) {
	result, err := h.backups.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
