package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/jobs/pipeline/pack_build"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

type GenerateHandler struct {
	log      *logger.Logger
	pipeline *pack_build.Pipeline
	jobs     store.JobStore
}

func NewGenerateHandler(baseLog *logger.Logger, pipeline *pack_build.Pipeline, jobs store.JobStore) *GenerateHandler {
	return &GenerateHandler{
		log:      baseLog.With("handler", "generate"),
		pipeline: pipeline,
		jobs:     jobs,
	}
}

// Generate accepts a course input, creates a queued job, and starts the
// build on its own goroutine. The response returns immediately with the job
// id; progress is observed via the status and events endpoints.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req struct {
		Input   string             `json:"input"`
		Options domain.PackOptions `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
		return
	}

	job, err := pack_build.CreateJob(c.Request.Context(), h.jobs)
	if err != nil {
		h.log.Error("Failed to create job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create job"})
		return
	}

	// The run outlives the request; it gets its own root context.
	go h.pipeline.Run(context.Background(), job.ID, pack_build.Inputs{
		Input:   req.Input,
		Options: req.Options,
	})

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": job.Status})
}
