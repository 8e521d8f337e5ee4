package model

import "time"

// JobStatus is the lifecycle state of a translation job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// IsTerminal reports whether the job can no longer change state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// BatchStatus is the lifecycle state of one batch window
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusError      BatchStatus = "error"
)

// BatchWindow is one time-bounded slice of a video. Windows are derived
// from the video duration and never mutated after planning.
type BatchWindow struct {
	Index        int `json:"index"`
	StartSeconds int `json:"start_seconds"`
	EndSeconds   int `json:"end_seconds"`
}

// BatchProgress is a full snapshot of per-window state for one job
type BatchProgress struct {
	TotalBatches      int           `json:"total_batches"`
	CompletedBatches  int           `json:"completed_batches"`
	CurrentBatchIndex int           `json:"current_batch_index"`
	BatchStatuses     []BatchStatus `json:"batch_statuses"`
}

// Clone returns a copy that shares no slice memory with the receiver
func (p BatchProgress) Clone() BatchProgress {
	out := p
	out.BatchStatuses = append([]BatchStatus(nil), p.BatchStatuses...)
	return out
}

// TranslationJob is the single active unit of translation work. At most one
// job may be processing process-wide at any instant.
type TranslationJob struct {
	ID            string        `json:"id"`
	VideoURL      string        `json:"video_url"`
	VideoID       string        `json:"video_id"`
	ConfigName    string        `json:"config_name"`
	Status        JobStatus     `json:"status"`
	Progress      BatchProgress `json:"progress"`
	PartialResult string        `json:"partial_result,omitempty"`
	Result        string        `json:"result,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// Clone returns a deep copy safe to hand to subscribers
func (j TranslationJob) Clone() TranslationJob {
	out := j
	out.Progress = j.Progress.Clone()
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
