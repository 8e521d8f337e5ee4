package queue

import (
	"context"

	"ytsubs/internal/model"
)

// Observer is notified after every queue mutation. Observers receive no
// payload; they re-read whatever slice of the queue they display.
type Observer func()

// AddRequest carries the user-supplied fields for a new queue entry.
// Missing metadata is filled in later, before translation starts.
type AddRequest struct {
	VideoURL        string
	Title           string
	Thumbnail       string
	DurationSeconds int
}

// Store manages the persistent translation queue
type Store interface {
	// Initialize loads the queue at startup. Entries persisted as
	// translating are moved back to pending: a stored translating status
	// can only be left over from a killed process.
	Initialize(ctx context.Context) error

	// Add enqueues a video. When an entry for the same video already
	// exists (any status), the existing entry is returned with existed
	// set to true and nothing changes.
	Add(ctx context.Context, req AddRequest) (entry *model.QueueEntry, existed bool, err error)

	// Get retrieves an entry by ID
	Get(ctx context.Context, id string) (*model.QueueEntry, error)

	// IsInQueue returns the entry for the video addressed by the URL, or
	// nil when the video is not queued
	IsInQueue(ctx context.Context, videoURL string) (*model.QueueEntry, error)

	// ItemsByStatus returns one page of entries with the given status,
	// plus the total count and page count for that status
	ItemsByStatus(ctx context.Context, status model.QueueStatus, page int) (entries []*model.QueueEntry, total, totalPages int, err error)

	// Counts returns the number of entries per status
	Counts(ctx context.Context) (model.QueueCounts, error)

	// NextPending returns the pending entry added first, or nil when
	// nothing is pending
	NextPending(ctx context.Context) (*model.QueueEntry, error)

	// Update persists the mutable fields of an entry
	Update(ctx context.Context, entry *model.QueueEntry) error

	// MoveToPending requeues an error, paused, or completed entry and
	// clears its error message
	MoveToPending(ctx context.Context, id string) (*model.QueueEntry, error)

	// Remove deletes an entry
	Remove(ctx context.Context, id string) error

	// ClearByStatus deletes every entry with the given status
	ClearByStatus(ctx context.Context, status model.QueueStatus) (int64, error)

	// ClearBacklog deletes every pending and error entry together
	ClearBacklog(ctx context.Context) (int64, error)

	// Subscribe registers an observer; the returned function unsubscribes
	Subscribe(observer Observer) func()
}

// Coordinator drives queue entries through the single translation job
// slot. At most one entry is translating at any instant.
type Coordinator interface {
	// StartTranslation begins translating the entry. It is a no-op when
	// the entry is already translating or another job is processing; the
	// entry then simply waits its turn.
	StartTranslation(ctx context.Context, entryID string) error

	// StartAutoProcess starts the oldest pending entry if the job slot is
	// free. Once running, the queue advances on its own: each finished
	// entry dispatches the next pending one.
	StartAutoProcess(ctx context.Context) error

	// Pause cancels the entry's running job and marks it paused. Window
	// results saved so far are kept, so resuming skips completed windows.
	Pause(ctx context.Context, entryID string) error

	// Resume requeues a paused entry and starts it if the slot is free
	Resume(ctx context.Context, entryID string) error

	// Stop cancels the entry's running job and returns it to pending
	Stop(ctx context.Context, entryID string) error

	// Abort cancels the entry's job, removes it from the queue, and
	// discards its saved window results
	Abort(ctx context.Context, entryID string) error
}
