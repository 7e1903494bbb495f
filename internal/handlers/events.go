package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/sse"
)

type EventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewEventsHandler(baseLog *logger.Logger, hub *sse.Hub) *EventsHandler {
	return &EventsHandler{log: baseLog.With("handler", "events"), hub: hub}
}

// StreamJob streams progress events for one job over SSE until the client
// disconnects. The channel name is the job id.
func (h *EventsHandler) StreamJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job id is required"})
		return
	}
	client := h.hub.Subscribe(jobID)
	h.hub.ServeClient(c.Writer, c.Request, jobID, client)
}
