package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	appservices "github.com/fr0stylo/lacquer/internal/app/services"
)

// IngestionRoutes exposes operator endpoints for catalog ingestion jobs.
type IngestionRoutes struct {
	jobs         *appservices.JobService
	requireAuth  echo.MiddlewareFunc
	requireAdmin echo.MiddlewareFunc
}

// NewIngestionRoutes constructs ingestion routes. Every route runs
// requireAuth then requireAdmin.
func NewIngestionRoutes(jobs *appservices.JobService, requireAuth, requireAdmin echo.MiddlewareFunc) *IngestionRoutes {
	return &IngestionRoutes{jobs: jobs, requireAuth: requireAuth, requireAdmin: requireAdmin}
}

// RegisterRoutes registers ingestion routes on the server.
func (r *IngestionRoutes) RegisterRoutes(s *echo.Echo) {
	group := s.Group("/ingestion", r.requireAuth, r.requireAdmin)
	group.POST("/jobs", r.handleRunJob)
	group.GET("/jobs", r.handleListJobs)
	group.GET("/jobs/:id", r.handleGetJob)
	group.POST("/jobs/:id/cancel", r.handleCancelJob)
	group.GET("/queue", r.handleQueueStats)
	group.DELETE("/queue", r.handlePurgeQueue)
}

type runJobResponse struct {
	JobID  string           `json:"jobId"`
	Status domain.JobStatus `json:"status"`
	Queue  string           `json:"queue"`
}

func (r *IngestionRoutes) handleRunJob(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var request domain.JobRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid json payload")
	}
	job, err := r.jobs.RunJob(c.Request().Context(), userID, request)
	if err != nil {
		return writeJobError(c, err)
	}
	return c.JSON(http.StatusAccepted, runJobResponse{JobID: job.ID, Status: job.Status, Queue: r.jobs.QueueName()})
}

func (r *IngestionRoutes) handleListJobs(c echo.Context) error {
	jobs, err := r.jobs.ListJobs(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		return writeJobError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"jobs": jobs})
}

func (r *IngestionRoutes) handleGetJob(c echo.Context) error {
	job, err := r.jobs.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeJobError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (r *IngestionRoutes) handleCancelJob(c echo.Context) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json payload")
	}
	job, err := r.jobs.CancelJob(c.Request().Context(), c.Param("id"), strings.TrimSpace(req.Reason))
	if err != nil {
		return writeJobError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (r *IngestionRoutes) handleQueueStats(c echo.Context) error {
	stats, err := r.jobs.QueueStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (r *IngestionRoutes) handlePurgeQueue(c echo.Context) error {
	purged, err := r.jobs.PurgeQueue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"queue": r.jobs.QueueName(), "purged": purged})
}
