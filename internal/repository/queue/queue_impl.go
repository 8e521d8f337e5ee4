package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
	"ytsubs/internal/repository/common"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// queueRepository implements Repository using PostgreSQL
type queueRepository struct {
	pool Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool Pool) Repository {
	return &queueRepository{
		pool: pool,
	}
}

const queueColumns = `id, video_id, video_url, title, thumbnail, duration, status, config_name,
		completed_batches, total_batches, error_message, added_at, started_at, completed_at`

// Create inserts a new queue entry
func (r *queueRepository) Create(ctx context.Context, entry *model.QueueEntry) error {
	sql := `INSERT INTO queue_entries
		(id, video_id, video_url, title, thumbnail, duration, status, config_name,
		 completed_batches, total_batches, error_message, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, sql,
		entry.ID, entry.VideoID, entry.VideoURL, entry.Title, entry.Thumbnail,
		entry.Duration, entry.Status, entry.ConfigName,
		entry.CompletedBatches, entry.TotalBatches, entry.ErrorMessage, entry.AddedAt)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create queue entry")
	}
	return nil
}

// GetByID retrieves a queue entry by its ID
func (r *queueRepository) GetByID(ctx context.Context, id string) (*model.QueueEntry, error) {
	sql := "SELECT " + queueColumns + " FROM queue_entries WHERE id = $1"
	entry, err := scanEntry(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "queue entry not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get queue entry")
	}
	return entry, nil
}

// GetByVideoID retrieves the queue entry for a video
func (r *queueRepository) GetByVideoID(ctx context.Context, videoID string) (*model.QueueEntry, error) {
	sql := "SELECT " + queueColumns + " FROM queue_entries WHERE video_id = $1"
	entry, err := scanEntry(r.pool.QueryRow(ctx, sql, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "queue entry not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get queue entry by video ID")
	}
	return entry, nil
}

// ListByStatus retrieves entries with the given status with pagination.
// Completed entries sort by completion time, translating entries by start
// time, everything else by the time they were added (newest first).
func (r *queueRepository) ListByStatus(ctx context.Context, status model.QueueStatus, limit, offset int) ([]*model.QueueEntry, error) {
	sql := fmt.Sprintf("SELECT "+queueColumns+" FROM queue_entries WHERE status = $1 ORDER BY %s LIMIT $2 OFFSET $3",
		sortKeyFor(status))
	rows, err := r.pool.Query(ctx, sql, status, limit, offset)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list queue entries")
	}
	defer rows.Close()

	entries := []*model.QueueEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan queue entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to read queue entries")
	}

	return entries, nil
}

// sortKeyFor returns the ORDER BY clause for a status listing
func sortKeyFor(status model.QueueStatus) string {
	switch status {
	case model.QueueStatusCompleted:
		return "completed_at DESC NULLS LAST"
	case model.QueueStatusTranslating:
		return "started_at DESC NULLS LAST"
	default:
		return "added_at DESC"
	}
}

// CountByStatus returns the number of entries per status
func (r *queueRepository) CountByStatus(ctx context.Context) (model.QueueCounts, error) {
	sql := "SELECT status, COUNT(*) FROM queue_entries GROUP BY status"
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return model.QueueCounts{}, common.HandlePostgreSQLError(err, "failed to count queue entries")
	}
	defer rows.Close()

	var counts model.QueueCounts
	for rows.Next() {
		var status model.QueueStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return model.QueueCounts{}, common.HandlePostgreSQLError(err, "failed to scan queue counts")
		}
		switch status {
		case model.QueueStatusPending:
			counts.Pending = count
		case model.QueueStatusTranslating:
			counts.Translating = count
		case model.QueueStatusPaused:
			counts.Paused = count
		case model.QueueStatusCompleted:
			counts.Completed = count
		case model.QueueStatusError:
			counts.Error = count
		}
	}
	if err := rows.Err(); err != nil {
		return model.QueueCounts{}, common.HandlePostgreSQLError(err, "failed to read queue counts")
	}

	return counts, nil
}

// OldestPending returns the pending entry that was added first
func (r *queueRepository) OldestPending(ctx context.Context) (*model.QueueEntry, error) {
	sql := "SELECT " + queueColumns + " FROM queue_entries WHERE status = $1 ORDER BY added_at ASC LIMIT 1"
	entry, err := scanEntry(r.pool.QueryRow(ctx, sql, model.QueueStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "no pending queue entries")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get oldest pending entry")
	}
	return entry, nil
}

// Update overwrites the mutable fields of an entry
func (r *queueRepository) Update(ctx context.Context, entry *model.QueueEntry) error {
	sql := `UPDATE queue_entries SET
		title = $2, thumbnail = $3, duration = $4, status = $5,
		completed_batches = $6, total_batches = $7, error_message = $8,
		started_at = $9, completed_at = $10
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql,
		entry.ID, entry.Title, entry.Thumbnail, entry.Duration, entry.Status,
		entry.CompletedBatches, entry.TotalBatches, entry.ErrorMessage,
		entry.StartedAt, entry.CompletedAt)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update queue entry")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "queue entry not found")
	}
	return nil
}

// Delete removes an entry by ID
func (r *queueRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM queue_entries WHERE id = $1"
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete queue entry")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "queue entry not found")
	}
	return nil
}

// DeleteByStatus removes every entry whose status is in statuses
func (r *queueRepository) DeleteByStatus(ctx context.Context, statuses ...model.QueueStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	sql := "DELETE FROM queue_entries WHERE status = ANY($1)"
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	tag, err := r.pool.Exec(ctx, sql, values)
	if err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to clear queue entries")
	}
	return tag.RowsAffected(), nil
}

// ResetStale moves every translating entry back to pending
func (r *queueRepository) ResetStale(ctx context.Context) (int64, error) {
	sql := `UPDATE queue_entries SET status = $1, started_at = NULL WHERE status = $2`
	tag, err := r.pool.Exec(ctx, sql, model.QueueStatusPending, model.QueueStatusTranslating)
	if err != nil {
		return 0, common.HandlePostgreSQLError(err, "failed to reset stale queue entries")
	}
	return tag.RowsAffected(), nil
}

// scanEntry reads one queue entry from a row
func scanEntry(row pgx.Row) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	err := row.Scan(&entry.ID, &entry.VideoID, &entry.VideoURL, &entry.Title,
		&entry.Thumbnail, &entry.Duration, &entry.Status, &entry.ConfigName,
		&entry.CompletedBatches, &entry.TotalBatches, &entry.ErrorMessage,
		&entry.AddedAt, &entry.StartedAt, &entry.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
