package domain

import "time"

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is the externally observable record for one pack generation run. The
// pipeline owns it for the duration of the run; observers poll it through the
// job store at any time. Progress is monotonically non-decreasing within a run.
type Job struct {
	ID                string    `json:"id"`
	Status            JobStatus `json:"status"`
	Step              string    `json:"step"`
	Progress          float64   `json:"progress"`
	TotalLectures     int       `json:"total_lectures"`
	CompletedLectures int       `json:"completed_lectures"`
	CurrentLecture    string    `json:"current_lecture,omitempty"`
	Errors            []string  `json:"errors"`
	PackID            string    `json:"pack_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Terminal reports whether the job can no longer change state.
func (j *Job) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
