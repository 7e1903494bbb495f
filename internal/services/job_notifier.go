package services

import (
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/sse"
)

// JobNotifier pushes live job events to subscribed observers. The polled Job
// record stays canonical; this channel is advisory.
type JobNotifier interface {
	JobProgress(job *domain.Job)
	JobFailed(job *domain.Job)
	JobDone(job *domain.Job)
}

type jobNotifier struct {
	hub *sse.Hub
}

func NewJobNotifier(hub *sse.Hub) JobNotifier {
	return &jobNotifier{hub: hub}
}

func (n *jobNotifier) JobProgress(job *domain.Job) {
	n.hub.Broadcast(sse.Message{
		Channel: job.ID,
		Event:   sse.EventJobProgress,
		Data:    map[string]any{"job": job},
	})
}

func (n *jobNotifier) JobFailed(job *domain.Job) {
	n.hub.Broadcast(sse.Message{
		Channel: job.ID,
		Event:   sse.EventJobFailed,
		Data:    map[string]any{"job": job},
	})
}

func (n *jobNotifier) JobDone(job *domain.Job) {
	n.hub.Broadcast(sse.Message{
		Channel: job.ID,
		Event:   sse.EventJobDone,
		Data:    map[string]any{"job": job},
	})
}

// NopNotifier is used when no SSE hub is wired (tests, CLI runs).
type NopNotifier struct{}

func (NopNotifier) JobProgress(*domain.Job) {}
func (NopNotifier) JobFailed(*domain.Job)   {}
func (NopNotifier) JobDone(*domain.Job)     {}
