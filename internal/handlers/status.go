package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

type StatusHandler struct {
	log  *logger.Logger
	jobs store.JobStore
}

func NewStatusHandler(baseLog *logger.Logger, jobs store.JobStore) *StatusHandler {
	return &StatusHandler{log: baseLog.With("handler", "status"), jobs: jobs}
}

func (h *StatusHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		h.log.Error("Job lookup failed", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
