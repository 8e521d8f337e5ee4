package subtitle

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

func TestSubtitleRepository_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	sub := &model.Subtitle{
		VideoID:    "abc123",
		ConfigName: "default",
		Content:    "translated subtitles",
	}

	rows := mock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now())
	mock.ExpectQuery("INSERT INTO subtitles").
		WithArgs(sub.VideoID, sub.ConfigName, sub.Content).
		WillReturnRows(rows)

	err = repo.Save(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.ID)
	assert.NotZero(t, sub.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubtitleRepository_Get(t *testing.T) {
	tests := []struct {
		name     string
		videoID  string
		found    bool
		wantCode string
	}{
		{
			name:    "existing subtitle",
			videoID: "abc123",
			found:   true,
		},
		{
			name:     "missing subtitle",
			videoID:  "missing",
			found:    false,
			wantCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewRepository(mock)

			rows := mock.NewRows([]string{"id", "video_id", "config_name", "content", "created_at"})
			if tt.found {
				rows.AddRow(1, tt.videoID, "default", "subtitle text", time.Now())
			}
			mock.ExpectQuery("SELECT (.+) FROM subtitles").
				WithArgs(tt.videoID, "default").
				WillReturnRows(rows)

			sub, err := repo.Get(context.Background(), tt.videoID, "default")

			if !tt.found {
				require.Error(t, err)
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantCode, appErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.videoID, sub.VideoID)
			assert.Equal(t, "subtitle text", sub.Content)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubtitleRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec("DELETE FROM subtitles").
		WithArgs("abc123", "default").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = repo.Delete(context.Background(), "abc123", "default")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
