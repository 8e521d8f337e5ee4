package subtitle

import (
	"context"
	"errors"

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

// subtitleRepository implements Repository using PostgreSQL
type subtitleRepository struct {
	pool Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool Pool) Repository {
	return &subtitleRepository{
		pool: pool,
	}
}

// Save inserts or replaces the subtitle for (videoID, configName)
func (r *subtitleRepository) Save(ctx context.Context, sub *model.Subtitle) error {
	sql := `INSERT INTO subtitles (video_id, config_name, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (video_id, config_name)
		DO UPDATE SET content = EXCLUDED.content, created_at = now()
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, sql, sub.VideoID, sub.ConfigName, sub.Content).
		Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to save subtitle")
	}
	return nil
}

// Get retrieves the subtitle for a video and config
func (r *subtitleRepository) Get(ctx context.Context, videoID, configName string) (*model.Subtitle, error) {
	sql := `SELECT id, video_id, config_name, content, created_at
		FROM subtitles WHERE video_id = $1 AND config_name = $2`

	var sub model.Subtitle
	err := r.pool.QueryRow(ctx, sql, videoID, configName).
		Scan(&sub.ID, &sub.VideoID, &sub.ConfigName, &sub.Content, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "subtitle not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get subtitle")
	}

	return &sub, nil
}

// ListVideoIDs returns the IDs of every video with a stored subtitle
func (r *subtitleRepository) ListVideoIDs(ctx context.Context, configName string) ([]string, error) {
	sql := `SELECT video_id FROM subtitles WHERE config_name = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, sql, configName)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list subtitle video IDs")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan subtitle video ID")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to read subtitle video IDs")
	}

	return ids, nil
}

// Delete removes the subtitle for a video and config
func (r *subtitleRepository) Delete(ctx context.Context, videoID, configName string) error {
	sql := "DELETE FROM subtitles WHERE video_id = $1 AND config_name = $2"
	_, err := r.pool.Exec(ctx, sql, videoID, configName)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete subtitle")
	}
	return nil
}
