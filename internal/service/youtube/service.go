package youtube

import (
	"context"
	"encoding/json"
	"strings"

	"ytsubs/internal/errors"
	"ytsubs/internal/service/common"
)

// VideoInfo holds the metadata needed to queue and batch a video
type VideoInfo struct {
	ID        string
	Title     string
	Thumbnail string
	Duration  int // seconds
}

// Service is interface for YouTube metadata operations
type Service interface {
	FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error)
}

// youTubeService implements Service using yt-dlp
type youTubeService struct {
	cmdRunner common.CmdRunner
}

// NewService creates a new Service
func NewService() Service {
	return NewServiceWithCmdRunner(common.NewCmdRunner())
}

// NewServiceWithCmdRunner creates a new Service with custom CmdRunner (for testing)
func NewServiceWithCmdRunner(cmdRunner common.CmdRunner) Service {
	return &youTubeService{
		cmdRunner: cmdRunner,
	}
}

// ytDlpVideoInfo represents yt-dlp JSON output structure for video info
type ytDlpVideoInfo struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
}

// FetchVideoInfo fetches title, thumbnail and duration for one video using yt-dlp
func (s *youTubeService) FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	// Input validation
	if ExtractVideoID(videoURL) == "" {
		return nil, errors.New(errors.CodeInvalidArg, "not a recognized YouTube URL: "+videoURL)
	}

	args := []string{
		"--dump-json",
		"--no-download",
		videoURL,
	}

	output, err := s.cmdRunner.Run(ctx, "yt-dlp", args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch video info with yt-dlp")
	}

	var ytInfo ytDlpVideoInfo
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(output))), &ytInfo); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse yt-dlp output")
	}

	return &VideoInfo{
		ID:        ytInfo.ID,
		Title:     ytInfo.Title,
		Thumbnail: ytInfo.Thumbnail,
		Duration:  int(ytInfo.Duration),
	}, nil
}
