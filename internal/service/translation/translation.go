package translation

import (
	"context"

	"ytsubs/internal/config"
	"ytsubs/internal/model"
)

// Translator defines the remote AI call that turns a video time range into
// subtitle text. Implementations must return AppError codes that express
// credential vs service health so the key pool can classify failures.
type Translator interface {
	TranslateWindow(ctx context.Context, apiKey, videoURL string, window model.BatchWindow, cfg config.TranslationConfig) (string, error)
}

// SubtitleRepository interface for persisting finished translations
type SubtitleRepository interface {
	Save(ctx context.Context, sub *model.Subtitle) error
}

// FragmentRepository interface for persisting per-window partial results
type FragmentRepository interface {
	Save(ctx context.Context, frag *model.Fragment) error
	ListByVideo(ctx context.Context, videoID, configName string) ([]*model.Fragment, error)
	DeleteByVideo(ctx context.Context, videoID, configName string) error
}

// StartRequest carries everything needed to begin one translation job
type StartRequest struct {
	VideoURL        string
	VideoID         string
	DurationSeconds int
	Config          config.TranslationConfig
}

// JobListener receives job snapshots on every state change
type JobListener func(job model.TranslationJob)

// JobRunner owns the single active translation job for the process
type JobRunner interface {
	// Start begins a new job. It fails with a CONFLICT error while another
	// job is processing; a job in a terminal state is replaced outright.
	// The returned ID identifies the new job. Execution is asynchronous:
	// observe it through Subscribe.
	Start(ctx context.Context, req StartRequest) (string, error)

	// Subscribe registers a listener which immediately receives the
	// current job state, then every subsequent change. The returned
	// function unsubscribes. Listeners must not call back into the
	// runner synchronously.
	Subscribe(listener JobListener) func()

	// Current returns a snapshot of the current job, if any
	Current() (model.TranslationJob, bool)

	// IsProcessing reports whether a job is currently running
	IsProcessing() bool

	// Cancel stops the running job at its next checkpoint
	Cancel() error
}
