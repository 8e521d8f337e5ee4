package subtitle

import (
	"context"

	"ytsubs/internal/model"
)

// Repository defines operations for finished subtitle persistence
type Repository interface {
	// Save inserts or replaces the subtitle for (videoID, configName)
	Save(ctx context.Context, sub *model.Subtitle) error

	// Get retrieves the subtitle for a video and config
	Get(ctx context.Context, videoID, configName string) (*model.Subtitle, error)

	// ListVideoIDs returns the IDs of every video with a stored subtitle
	ListVideoIDs(ctx context.Context, configName string) ([]string, error)

	// Delete removes the subtitle for a video and config
	Delete(ctx context.Context, videoID, configName string) error
}
