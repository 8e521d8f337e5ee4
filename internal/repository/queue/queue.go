package queue

import (
	"context"

	"ytsubs/internal/model"
)

// Repository defines operations for queue entry persistence
type Repository interface {
	// Create inserts a new queue entry
	Create(ctx context.Context, entry *model.QueueEntry) error

	// GetByID retrieves a queue entry by its ID
	GetByID(ctx context.Context, id string) (*model.QueueEntry, error)

	// GetByVideoID retrieves the queue entry for a video, if any.
	// There is at most one entry per video.
	GetByVideoID(ctx context.Context, videoID string) (*model.QueueEntry, error)

	// ListByStatus retrieves entries with the given status, ordered by the
	// status-specific sort key, with pagination
	ListByStatus(ctx context.Context, status model.QueueStatus, limit, offset int) ([]*model.QueueEntry, error)

	// CountByStatus returns the number of entries per status
	CountByStatus(ctx context.Context) (model.QueueCounts, error)

	// OldestPending returns the pending entry that was added first, or
	// a NOT_FOUND error when nothing is pending
	OldestPending(ctx context.Context) (*model.QueueEntry, error)

	// Update overwrites the mutable fields of an entry
	Update(ctx context.Context, entry *model.QueueEntry) error

	// Delete removes an entry by ID
	Delete(ctx context.Context, id string) error

	// DeleteByStatus removes every entry whose status is in statuses
	DeleteByStatus(ctx context.Context, statuses ...model.QueueStatus) (int64, error)

	// ResetStale moves every translating entry back to pending. A persisted
	// translating status can only be left over from a killed process.
	ResetStale(ctx context.Context) (int64, error)
}
