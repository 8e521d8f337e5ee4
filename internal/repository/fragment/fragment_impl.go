package fragment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

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

// fragmentRepository implements Repository using PostgreSQL
type fragmentRepository struct {
	pool Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool Pool) Repository {
	return &fragmentRepository{
		pool: pool,
	}
}

// Save inserts or replaces the fragment for a window
func (r *fragmentRepository) Save(ctx context.Context, frag *model.Fragment) error {
	sql := `INSERT INTO fragments (video_id, config_name, window_index, start_seconds, end_seconds, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (video_id, config_name, window_index)
		DO UPDATE SET start_seconds = EXCLUDED.start_seconds,
			end_seconds = EXCLUDED.end_seconds,
			content = EXCLUDED.content
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, sql,
		frag.VideoID, frag.ConfigName, frag.WindowIndex,
		frag.StartSeconds, frag.EndSeconds, frag.Content).
		Scan(&frag.ID, &frag.CreatedAt)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to save fragment")
	}
	return nil
}

// ListByVideo retrieves all fragments for a video and config
func (r *fragmentRepository) ListByVideo(ctx context.Context, videoID, configName string) ([]*model.Fragment, error) {
	sql := `SELECT id, video_id, config_name, window_index, start_seconds, end_seconds, content, created_at
		FROM fragments
		WHERE video_id = $1 AND config_name = $2
		ORDER BY window_index ASC`

	rows, err := r.pool.Query(ctx, sql, videoID, configName)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list fragments")
	}
	defer rows.Close()

	fragments := []*model.Fragment{}
	for rows.Next() {
		var frag model.Fragment
		err := rows.Scan(&frag.ID, &frag.VideoID, &frag.ConfigName, &frag.WindowIndex,
			&frag.StartSeconds, &frag.EndSeconds, &frag.Content, &frag.CreatedAt)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan fragment")
		}
		fragments = append(fragments, &frag)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to read fragments")
	}

	return fragments, nil
}

// DeleteByVideo removes all fragments for a video and config
func (r *fragmentRepository) DeleteByVideo(ctx context.Context, videoID, configName string) error {
	sql := "DELETE FROM fragments WHERE video_id = $1 AND config_name = $2"
	_, err := r.pool.Exec(ctx, sql, videoID, configName)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete fragments")
	}
	return nil
}
