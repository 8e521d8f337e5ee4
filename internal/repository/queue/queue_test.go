package queue

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
)

func newTestEntry() *model.QueueEntry {
	return &model.QueueEntry{
		ID:         "entry-1",
		VideoID:    "abc123",
		VideoURL:   "https://youtu.be/abc123",
		Title:      "Test Video",
		Duration:   1500,
		Status:     model.QueueStatusPending,
		ConfigName: "default",
		AddedAt:    time.Now(),
	}
}

func entryRows(mock pgxmock.PgxPoolIface, entries ...*model.QueueEntry) *pgxmock.Rows {
	rows := mock.NewRows([]string{
		"id", "video_id", "video_url", "title", "thumbnail", "duration", "status",
		"config_name", "completed_batches", "total_batches", "error_message",
		"added_at", "started_at", "completed_at",
	})
	for _, e := range entries {
		rows.AddRow(e.ID, e.VideoID, e.VideoURL, e.Title, e.Thumbnail, e.Duration,
			e.Status, e.ConfigName, e.CompletedBatches, e.TotalBatches,
			e.ErrorMessage, e.AddedAt, e.StartedAt, e.CompletedAt)
	}
	return rows
}

func TestQueueRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr bool
	}{
		{
			name: "successful creation",
		},
		{
			name:    "database error",
			dbErr:   assert.AnError,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewRepository(mock)
			entry := newTestEntry()

			exec := mock.ExpectExec("INSERT INTO queue_entries").
				WithArgs(entry.ID, entry.VideoID, entry.VideoURL, entry.Title,
					entry.Thumbnail, entry.Duration, entry.Status, entry.ConfigName,
					entry.CompletedBatches, entry.TotalBatches, entry.ErrorMessage,
					entry.AddedAt)
			if tt.dbErr != nil {
				exec.WillReturnError(tt.dbErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err = repo.Create(context.Background(), entry)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueueRepository_GetByVideoID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	entry := newTestEntry()

	mock.ExpectQuery("SELECT (.+) FROM queue_entries WHERE video_id").
		WithArgs(entry.VideoID).
		WillReturnRows(entryRows(mock, entry))

	got, err := repo.GetByVideoID(context.Background(), entry.VideoID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.VideoURL, got.VideoURL)
	assert.Equal(t, model.QueueStatusPending, got.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_GetByVideoID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM queue_entries WHERE video_id").
		WithArgs("missing").
		WillReturnRows(entryRows(mock))

	_, err = repo.GetByVideoID(context.Background(), "missing")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_ListByStatus_SortKeys(t *testing.T) {
	tests := []struct {
		name     string
		status   model.QueueStatus
		wantSort string
	}{
		{
			name:     "completed sorts by completion time",
			status:   model.QueueStatusCompleted,
			wantSort: "ORDER BY completed_at DESC",
		},
		{
			name:     "translating sorts by start time",
			status:   model.QueueStatusTranslating,
			wantSort: "ORDER BY started_at DESC",
		},
		{
			name:     "pending sorts by added time",
			status:   model.QueueStatusPending,
			wantSort: "ORDER BY added_at DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewRepository(mock)

			mock.ExpectQuery("SELECT (.+) FROM queue_entries WHERE status = (.+) " + tt.wantSort).
				WithArgs(tt.status, 20, 0).
				WillReturnRows(entryRows(mock))

			entries, err := repo.ListByStatus(context.Background(), tt.status, 20, 0)
			require.NoError(t, err)
			assert.Empty(t, entries)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueueRepository_CountByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	rows := mock.NewRows([]string{"status", "count"}).
		AddRow(model.QueueStatusPending, 3).
		AddRow(model.QueueStatusCompleted, 2).
		AddRow(model.QueueStatusError, 1)
	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Pending)
	assert.Equal(t, 2, counts.Completed)
	assert.Equal(t, 1, counts.Error)
	assert.Equal(t, 0, counts.Translating)
	assert.Equal(t, 6, counts.Total())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Update_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	entry := newTestEntry()

	mock.ExpectExec("UPDATE queue_entries SET").
		WithArgs(entry.ID, entry.Title, entry.Thumbnail, entry.Duration, entry.Status,
			entry.CompletedBatches, entry.TotalBatches, entry.ErrorMessage,
			entry.StartedAt, entry.CompletedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), entry)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_DeleteByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec("DELETE FROM queue_entries WHERE status = ANY").
		WithArgs([]string{"pending", "error"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	deleted, err := repo.DeleteByStatus(context.Background(),
		model.QueueStatusPending, model.QueueStatusError)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_DeleteByStatus_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	// No statuses means nothing to do, no query issued
	deleted, err := repo.DeleteByStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_ResetStale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec("UPDATE queue_entries SET status").
		WithArgs(model.QueueStatusPending, model.QueueStatusTranslating).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	reset, err := repo.ResetStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)

	require.NoError(t, mock.ExpectationsWereMet())
}
