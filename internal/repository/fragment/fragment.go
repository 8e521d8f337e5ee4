package fragment

import (
	"context"

	"ytsubs/internal/model"
)

// Repository defines operations for partial translation fragments. A fragment
// is the text of one completed batch window, kept so an interrupted job can
// resume without redoing finished windows.
type Repository interface {
	// Save inserts or replaces the fragment for a window
	Save(ctx context.Context, frag *model.Fragment) error

	// ListByVideo retrieves all fragments for a video and config,
	// ordered by window index ascending
	ListByVideo(ctx context.Context, videoID, configName string) ([]*model.Fragment, error)

	// DeleteByVideo removes all fragments for a video and config
	DeleteByVideo(ctx context.Context, videoID, configName string) error
}
