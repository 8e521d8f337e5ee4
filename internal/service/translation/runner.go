package translation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
	"ytsubs/internal/service/batch"
	"ytsubs/internal/service/keypool"
	"ytsubs/internal/service/youtube"
)

// jobRunner implements JobRunner. It holds at most one job; a new Start
// replaces a terminal job but is refused while one is processing.
type jobRunner struct {
	mu          sync.RWMutex
	job         *model.TranslationJob
	cancel      context.CancelFunc
	windows     []model.BatchWindow
	contents    map[int]string // completed window texts for the current job
	streaming   bool
	concurrency int

	notifyMu  sync.Mutex
	listeners map[int]JobListener
	nextID    int

	pool       *keypool.Pool
	translator Translator
	subtitles  SubtitleRepository
	fragments  FragmentRepository
}

// NewJobRunner creates a JobRunner wired to its collaborators
func NewJobRunner(pool *keypool.Pool, translator Translator, subtitles SubtitleRepository, fragments FragmentRepository) JobRunner {
	return &jobRunner{
		listeners:  make(map[int]JobListener),
		pool:       pool,
		translator: translator,
		subtitles:  subtitles,
		fragments:  fragments,
	}
}

// Start begins a new translation job
func (r *jobRunner) Start(ctx context.Context, req StartRequest) (string, error) {
	if req.VideoURL == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "video URL is required")
	}
	videoID := req.VideoID
	if videoID == "" {
		videoID = youtube.ExtractVideoID(req.VideoURL)
	}
	if videoID == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "not a recognized YouTube URL: "+req.VideoURL)
	}

	windows, err := batch.PlanWindows(req.DurationSeconds,
		req.Config.MaxWindowSeconds, req.Config.ToleranceSeconds)
	if err != nil {
		return "", err
	}

	// Restore per-window results saved by a previous attempt
	restored := r.loadRestorableFragments(ctx, videoID, req.Config.ConfigName, windows)

	r.mu.Lock()
	if r.job != nil && r.job.Status == model.JobStatusProcessing {
		r.mu.Unlock()
		return "", apperrors.New(apperrors.CodeConflict,
			"a translation job is already running for "+r.job.VideoURL)
	}

	statuses := make([]model.BatchStatus, len(windows))
	done := 0
	for i := range statuses {
		if _, ok := restored[i]; ok {
			statuses[i] = model.BatchStatusCompleted
			done++
		} else {
			statuses[i] = model.BatchStatusPending
		}
	}

	job := &model.TranslationJob{
		ID:         uuid.New().String(),
		VideoURL:   req.VideoURL,
		VideoID:    videoID,
		ConfigName: req.Config.ConfigName,
		Status:     model.JobStatusProcessing,
		Progress: model.BatchProgress{
			TotalBatches:     len(windows),
			CompletedBatches: done,
			BatchStatuses:    statuses,
		},
		StartedAt: time.Now(),
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	r.job = job
	r.cancel = cancel
	r.windows = windows
	r.streaming = req.Config.StreamingEnabled
	r.concurrency = req.Config.MaxConcurrentWindows
	r.contents = make(map[int]string, len(windows))
	for idx, content := range restored {
		r.contents[idx] = content
	}
	jobID := job.ID
	r.mu.Unlock()

	r.notify()

	go r.run(jobCtx, jobID, windows, restored, req)

	return jobID, nil
}

// loadRestorableFragments returns saved window contents whose bounds still
// match the freshly planned windows. A mismatch means the batch settings
// changed since the fragments were written, so they cannot be reused.
func (r *jobRunner) loadRestorableFragments(ctx context.Context, videoID, configName string, windows []model.BatchWindow) map[int]string {
	saved, err := r.fragments.ListByVideo(ctx, videoID, configName)
	if err != nil || len(saved) == 0 {
		return nil
	}

	restored := make(map[int]string)
	for _, frag := range saved {
		if frag.WindowIndex < 0 || frag.WindowIndex >= len(windows) {
			return nil
		}
		w := windows[frag.WindowIndex]
		if frag.StartSeconds != w.StartSeconds || frag.EndSeconds != w.EndSeconds {
			return nil
		}
		restored[frag.WindowIndex] = frag.Content
	}
	return restored
}

// run executes the job to its terminal state
func (r *jobRunner) run(ctx context.Context, jobID string, windows []model.BatchWindow, restored map[int]string, req StartRequest) {
	translate := r.translateFunc(jobID, req)

	var merged string
	var err error
	if len(windows) == 1 && len(restored) == 0 {
		merged, err = r.runSingle(ctx, jobID, windows[0], translate)
	} else {
		merged, err = r.runBatched(ctx, jobID, windows, restored, translate)
	}

	if err != nil {
		r.finishError(jobID, err)
		return
	}
	r.finishSuccess(ctx, jobID, req, merged)
}

// translateFunc builds the per-window translation closure: the remote call
// wrapped with credential rotation, with each completed window persisted as
// a fragment for resume
func (r *jobRunner) translateFunc(jobID string, req StartRequest) batch.TranslateFunc {
	return func(ctx context.Context, window model.BatchWindow) (string, error) {
		var text string
		err := r.pool.RunWithRotation(ctx, func(ctx context.Context, key string) error {
			out, err := r.translator.TranslateWindow(ctx, key, req.VideoURL, window, req.Config)
			if err != nil {
				return err
			}
			text = out
			return nil
		})
		if err != nil {
			return "", err
		}

		r.recordWindowContent(jobID, window.Index, text)

		// Best effort: a failed fragment write only costs redo on resume
		_ = r.fragments.Save(ctx, &model.Fragment{
			VideoID:      r.jobVideoID(jobID),
			ConfigName:   req.Config.ConfigName,
			WindowIndex:  window.Index,
			StartSeconds: window.StartSeconds,
			EndSeconds:   window.EndSeconds,
			Content:      text,
		})

		return text, nil
	}
}

// runSingle executes the one-window path without the worker pool
func (r *jobRunner) runSingle(ctx context.Context, jobID string, window model.BatchWindow, translate batch.TranslateFunc) (string, error) {
	r.updateProgress(jobID, model.BatchProgress{
		TotalBatches:  1,
		BatchStatuses: []model.BatchStatus{model.BatchStatusProcessing},
	}, false)

	text, err := translate(ctx, window)
	if err != nil {
		r.updateProgress(jobID, model.BatchProgress{
			TotalBatches:  1,
			BatchStatuses: []model.BatchStatus{model.BatchStatusError},
		}, false)
		return "", err
	}

	r.updateProgress(jobID, model.BatchProgress{
		TotalBatches:     1,
		CompletedBatches: 1,
		BatchStatuses:    []model.BatchStatus{model.BatchStatusCompleted},
	}, false)
	return text, nil
}

// runBatched executes the multi-window path through the scheduler
func (r *jobRunner) runBatched(ctx context.Context, jobID string, windows []model.BatchWindow, restored map[int]string, translate batch.TranslateFunc) (string, error) {
	r.mu.RLock()
	streaming := r.streaming
	concurrency := r.concurrency
	r.mu.RUnlock()

	results, err := batch.RunWindows(ctx, windows, concurrency, restored, translate,
		func(progress model.BatchProgress) {
			r.updateProgress(jobID, progress, streaming)
		})
	if err != nil {
		return "", err
	}
	return batch.MergeResults(results), nil
}

// jobVideoID returns the video ID of the job if it is still current
func (r *jobRunner) jobVideoID(jobID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.job == nil || r.job.ID != jobID {
		return ""
	}
	return r.job.VideoID
}

// recordWindowContent stores a completed window's text for partial merges
func (r *jobRunner) recordWindowContent(jobID string, index int, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil || r.job.ID != jobID {
		return
	}
	r.contents[index] = content
}

// updateProgress mirrors a progress snapshot into the job and, in streaming
// mode, recomputes the partial result from windows completed so far. Late
// snapshots for a superseded job are discarded.
func (r *jobRunner) updateProgress(jobID string, progress model.BatchProgress, streaming bool) {
	r.mu.Lock()
	if r.job == nil || r.job.ID != jobID || r.job.Status != model.JobStatusProcessing {
		r.mu.Unlock()
		return
	}
	r.job.Progress = progress.Clone()
	if streaming {
		r.job.PartialResult = r.partialResultLocked()
	}
	r.mu.Unlock()

	r.notify()
}

// partialResultLocked merges completed window contents in window order;
// callers must hold r.mu
func (r *jobRunner) partialResultLocked() string {
	results := make([]batch.WindowResult, 0, len(r.contents))
	for idx, content := range r.contents {
		if idx < 0 || idx >= len(r.windows) {
			continue
		}
		results = append(results, batch.WindowResult{
			Window:  r.windows[idx],
			Content: content,
		})
	}
	return batch.MergeResults(results)
}

// finishSuccess persists the merged result and completes the job
func (r *jobRunner) finishSuccess(ctx context.Context, jobID string, req StartRequest, merged string) {
	err := r.subtitles.Save(ctx, &model.Subtitle{
		VideoID:    r.jobVideoID(jobID),
		ConfigName: req.Config.ConfigName,
		Content:    merged,
	})
	if err != nil {
		r.finishError(jobID, err)
		return
	}

	// Fragments are only a recovery aid; the stored subtitle supersedes them
	_ = r.fragments.DeleteByVideo(ctx, r.jobVideoID(jobID), req.Config.ConfigName)

	r.mu.Lock()
	if r.job == nil || r.job.ID != jobID {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	r.job.Status = model.JobStatusCompleted
	r.job.Result = merged
	r.job.PartialResult = ""
	r.job.CompletedAt = &now
	r.mu.Unlock()

	r.notify()
}

// finishError records the job's terminal error. Errors are delivered to
// subscribers through the status change, never thrown past the runner.
func (r *jobRunner) finishError(jobID string, err error) {
	message := err.Error()
	if errors.Is(err, context.Canceled) {
		message = "translation cancelled"
	}

	r.mu.Lock()
	if r.job == nil || r.job.ID != jobID || r.job.Status != model.JobStatusProcessing {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	r.job.Status = model.JobStatusError
	r.job.ErrorMessage = message
	r.job.CompletedAt = &now
	r.mu.Unlock()

	r.notify()
}

// Subscribe registers a listener with replay-once semantics
func (r *jobRunner) Subscribe(listener JobListener) func() {
	r.notifyMu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener

	// Replay the current state before any further notification can land
	if job, ok := r.currentLocked(); ok {
		listener(job)
	}
	r.notifyMu.Unlock()

	return func() {
		r.notifyMu.Lock()
		delete(r.listeners, id)
		r.notifyMu.Unlock()
	}
}

// currentLocked snapshots the job under the read lock
func (r *jobRunner) currentLocked() (model.TranslationJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.job == nil {
		return model.TranslationJob{}, false
	}
	return r.job.Clone(), true
}

// Current returns a snapshot of the current job, if any
func (r *jobRunner) Current() (model.TranslationJob, bool) {
	return r.currentLocked()
}

// IsProcessing reports whether a job is currently running
func (r *jobRunner) IsProcessing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.job != nil && r.job.Status == model.JobStatusProcessing
}

// Cancel stops the running job. In-flight window requests are cancelled
// through their context; the job reaches its error state through the
// normal notification path.
func (r *jobRunner) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil || r.job.Status != model.JobStatusProcessing {
		return apperrors.New(apperrors.CodeNotFound, "no running translation job")
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// notify fans the current job state out to every listener. The notify
// mutex keeps snapshots in order without holding the state lock during
// listener callbacks.
func (r *jobRunner) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	job, ok := r.currentLocked()
	if !ok {
		return
	}
	for _, listener := range r.listeners {
		listener(job)
	}
}
