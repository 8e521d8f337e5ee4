package model

import "time"

// QueueStatus is the lifecycle state of a queue entry
type QueueStatus string

const (
	QueueStatusPending     QueueStatus = "pending"
	QueueStatusTranslating QueueStatus = "translating"
	QueueStatusPaused      QueueStatus = "paused"
	QueueStatusCompleted   QueueStatus = "completed"
	QueueStatusError       QueueStatus = "error"
)

// QueueStatuses lists every valid queue status
var QueueStatuses = []QueueStatus{
	QueueStatusPending,
	QueueStatusTranslating,
	QueueStatusPaused,
	QueueStatusCompleted,
	QueueStatusError,
}

// IsValid reports whether s is a known queue status
func (s QueueStatus) IsValid() bool {
	for _, known := range QueueStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// QueueEntry represents one video the user asked to translate
type QueueEntry struct {
	ID               string      `json:"id" db:"id"`
	VideoID          string      `json:"video_id" db:"video_id"`
	VideoURL         string      `json:"video_url" db:"video_url"`
	Title            string      `json:"title" db:"title"`
	Thumbnail        string      `json:"thumbnail" db:"thumbnail"`
	Duration         int         `json:"duration" db:"duration"` // duration in seconds, 0 until known
	Status           QueueStatus `json:"status" db:"status"`
	ConfigName       string      `json:"config_name" db:"config_name"`
	CompletedBatches int         `json:"completed_batches" db:"completed_batches"`
	TotalBatches     int         `json:"total_batches" db:"total_batches"`
	ErrorMessage     string      `json:"error_message" db:"error_message"`
	AddedAt          time.Time   `json:"added_at" db:"added_at"`
	StartedAt        *time.Time  `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time  `json:"completed_at" db:"completed_at"`
}

// QueueCounts holds the number of entries per status
type QueueCounts struct {
	Pending     int `json:"pending"`
	Translating int `json:"translating"`
	Paused      int `json:"paused"`
	Completed   int `json:"completed"`
	Error       int `json:"error"`
}

// Total returns the number of entries across all statuses
func (c QueueCounts) Total() int {
	return c.Pending + c.Translating + c.Paused + c.Completed + c.Error
}

// Subtitle represents a finished translation stored for a video
type Subtitle struct {
	ID         int       `json:"id" db:"id"`
	VideoID    string    `json:"video_id" db:"video_id"`
	ConfigName string    `json:"config_name" db:"config_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Fragment represents one completed batch window persisted mid-job so a
// paused or interrupted translation can resume without redoing the window
type Fragment struct {
	ID           int       `json:"id" db:"id"`
	VideoID      string    `json:"video_id" db:"video_id"`
	ConfigName   string    `json:"config_name" db:"config_name"`
	WindowIndex  int       `json:"window_index" db:"window_index"`
	StartSeconds int       `json:"start_seconds" db:"start_seconds"`
	EndSeconds   int       `json:"end_seconds" db:"end_seconds"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
