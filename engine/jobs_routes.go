package engine

import (
	"context"
	"net/http"
	"strconv"

	"github.com/drummonds/rotatepdf/database"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

// startJob records a running export. The ledger is best effort, so failures are only logged
// and a nil job is returned.
func (serverHandler *ServerHandler) startJob(ctx context.Context, req database.ExportRequest) *database.Job {
	if serverHandler.DB == nil {
		return nil
	}
	job, err := serverHandler.DB.CreateJob(ctx, req)
	if err != nil {
		Logger.Warn("Unable to record export job", "session", req.SessionID, "error", err)
		return nil
	}
	if err := serverHandler.DB.UpdateJobStatus(ctx, job.ID, database.JobStatusRunning, "Rewriting document"); err != nil {
		Logger.Warn("Unable to mark export job running", "jobID", job.ID.String(), "error", err)
	}
	return job
}

func (serverHandler *ServerHandler) completeJob(ctx context.Context, job *database.Job, result *ExportResult) {
	if job == nil {
		return
	}
	outcome := database.ExportOutcome{
		OutputName:   result.Name,
		RotatedPages: result.RotatedPages,
		Bytes:        int64(len(result.Bytes)),
	}
	if err := serverHandler.DB.CompleteJob(ctx, job.ID, outcome); err != nil {
		Logger.Warn("Unable to complete export job", "jobID", job.ID.String(), "error", err)
	}
}

func (serverHandler *ServerHandler) failJob(ctx context.Context, job *database.Job, cause error) {
	if job == nil {
		return
	}
	if err := serverHandler.DB.UpdateJobError(ctx, job.ID, cause.Error()); err != nil {
		Logger.Warn("Unable to record export failure", "jobID", job.ID.String(), "error", err)
	}
}

func noLedger(c echo.Context) error {
	return c.JSON(http.StatusOK, []database.Job{})
}

// GetJob retrieves a job by ID
// @Summary Get job by ID
// @Description Retrieve details of a specific export job by its ID
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID (ULID)"
// @Success 200 {object} database.Job "Job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func (serverHandler *ServerHandler) GetJob(c echo.Context) error {
	jobIDStr := c.Param("id")

	jobID, err := ulid.Parse(jobIDStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid job ID format",
		})
	}
	if serverHandler.DB == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Job not found",
		})
	}

	job, err := serverHandler.DB.GetJob(c.Request().Context(), jobID)
	if err != nil {
		Logger.Error("Failed to get job", "jobID", jobIDStr, "error", err)
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Job not found",
		})
	}

	return c.JSON(http.StatusOK, job)
}

// GetRecentJobs retrieves recent export jobs with pagination
// @Summary Get recent jobs
// @Description Retrieve a list of recent export jobs with pagination
// @Tags Jobs
// @Accept json
// @Produce json
// @Param limit query int false "Number of jobs to return (default: 20)"
// @Param offset query int false "Offset for pagination (default: 0)"
// @Success 200 {array} database.Job "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func (serverHandler *ServerHandler) GetRecentJobs(c echo.Context) error {
	if serverHandler.DB == nil {
		return noLedger(c)
	}
	limit := 20
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	jobs, err := serverHandler.DB.GetRecentJobs(c.Request().Context(), limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent jobs", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve jobs",
		})
	}

	if jobs == nil {
		jobs = []database.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}

// GetActiveJobs retrieves all exports still in progress
// @Summary Get active jobs
// @Tags Jobs
// @Produce json
// @Success 200 {array} database.Job "List of active jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/active [get]
func (serverHandler *ServerHandler) GetActiveJobs(c echo.Context) error {
	if serverHandler.DB == nil {
		return noLedger(c)
	}
	jobs, err := serverHandler.DB.GetActiveJobs(c.Request().Context())
	if err != nil {
		Logger.Error("Failed to get active jobs", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve active jobs",
		})
	}

	if jobs == nil {
		jobs = []database.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}

// GetSessionJobs lists the exports made from one session
// @Summary Get jobs for a session
// @Tags Jobs
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Success 200 {array} database.Job "List of jobs"
// @Router /session/{id}/jobs [get]
func (serverHandler *ServerHandler) GetSessionJobs(c echo.Context) error {
	if serverHandler.DB == nil {
		return noLedger(c)
	}
	jobs, err := serverHandler.DB.GetSessionJobs(c.Request().Context(), c.Param("id"))
	if err != nil {
		Logger.Error("Failed to get session jobs", "session", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve jobs",
		})
	}
	if jobs == nil {
		jobs = []database.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}
