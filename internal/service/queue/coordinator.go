package queue

import (
	"context"
	"sync"
	"time"

	"ytsubs/internal/config"
	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
	"ytsubs/internal/service/translation"
	"ytsubs/internal/service/youtube"
)

// defaultAdvanceDelay separates one finished entry from the next dispatch,
// giving the remote API a short breather between videos
const defaultAdvanceDelay = time.Second

// FragmentCleaner removes the saved window results of a video
type FragmentCleaner interface {
	DeleteByVideo(ctx context.Context, videoID, configName string) error
}

// coordinator implements Coordinator
type coordinator struct {
	store     Store
	runner    translation.JobRunner
	videos    youtube.Service
	fragments FragmentCleaner
	cfg       config.TranslationConfig

	// admitMu serializes admission into the job slot. The status check,
	// the translating update, and the job start must be one atomic step:
	// the auto-advance goroutine and user commands race for the slot.
	admitMu sync.Mutex

	advanceDelay time.Duration
}

// NewCoordinator creates a Coordinator wired to the queue store and the
// translation job runner
func NewCoordinator(store Store, runner translation.JobRunner, videos youtube.Service, fragments FragmentCleaner, cfg config.TranslationConfig) Coordinator {
	return &coordinator{
		store:        store,
		runner:       runner,
		videos:       videos,
		fragments:    fragments,
		cfg:          cfg,
		advanceDelay: defaultAdvanceDelay,
	}
}

func (c *coordinator) StartTranslation(ctx context.Context, entryID string) error {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != model.QueueStatusPending {
		// A translating entry is already being handled; paused and
		// terminal entries only re-enter through an explicit requeue
		return nil
	}
	if c.runner.IsProcessing() {
		// The slot is busy; the entry keeps waiting as pending
		return nil
	}

	if entry.Duration <= 0 {
		if err := c.fillMetadata(ctx, entry); err != nil {
			return c.failEntry(ctx, entry, err)
		}
	}

	now := time.Now()
	entry.Status = model.QueueStatusTranslating
	entry.StartedAt = &now
	entry.ErrorMessage = ""
	if err := c.store.Update(ctx, entry); err != nil {
		return err
	}

	jobID, err := c.runner.Start(ctx, translation.StartRequest{
		VideoURL:        entry.VideoURL,
		VideoID:         entry.VideoID,
		DurationSeconds: entry.Duration,
		Config:          c.cfg,
	})
	if err != nil {
		if isConflict(err) {
			// Lost the slot anyway; the entry goes back to waiting
			// rather than carrying an error it did not earn
			entry.Status = model.QueueStatusPending
			entry.StartedAt = nil
			return c.store.Update(ctx, entry)
		}
		// The job never started; record the failure and move on so one
		// bad entry cannot stall the queue
		return c.failEntry(ctx, entry, err)
	}

	c.watchJob(entry.ID, jobID)
	return nil
}

func (c *coordinator) StartAutoProcess(ctx context.Context) error {
	if c.runner.IsProcessing() {
		return nil
	}
	next, err := c.store.NextPending(ctx)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	return c.StartTranslation(ctx, next.ID)
}

func (c *coordinator) Pause(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != model.QueueStatusTranslating {
		return apperrors.New(apperrors.CodeInvalidArg,
			"entry is not translating: "+string(entry.Status))
	}

	// The status change must land before the cancelled job goes terminal,
	// so the job watcher leaves the entry alone
	entry.Status = model.QueueStatusPaused
	if err := c.store.Update(ctx, entry); err != nil {
		return err
	}

	_ = c.runner.Cancel()
	return nil
}

func (c *coordinator) Resume(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != model.QueueStatusPaused {
		return apperrors.New(apperrors.CodeInvalidArg,
			"entry is not paused: "+string(entry.Status))
	}

	if _, err := c.store.MoveToPending(ctx, entryID); err != nil {
		return err
	}
	return c.StartTranslation(ctx, entryID)
}

func (c *coordinator) Stop(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != model.QueueStatusTranslating {
		return apperrors.New(apperrors.CodeInvalidArg,
			"entry is not translating: "+string(entry.Status))
	}

	entry.Status = model.QueueStatusPending
	entry.StartedAt = nil
	if err := c.store.Update(ctx, entry); err != nil {
		return err
	}

	_ = c.runner.Cancel()
	return nil
}

func (c *coordinator) Abort(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return err
	}

	if entry.Status == model.QueueStatusTranslating {
		_ = c.runner.Cancel()
	}

	if err := c.store.Remove(ctx, entryID); err != nil {
		return err
	}
	return c.fragments.DeleteByVideo(ctx, entry.VideoID, entry.ConfigName)
}

// fillMetadata fetches title and duration for entries queued by URL alone
func (c *coordinator) fillMetadata(ctx context.Context, entry *model.QueueEntry) error {
	info, err := c.videos.FetchVideoInfo(ctx, entry.VideoURL)
	if err != nil {
		return err
	}
	entry.Duration = info.Duration
	if entry.Title == "" {
		entry.Title = info.Title
	}
	if entry.Thumbnail == "" {
		entry.Thumbnail = info.Thumbnail
	}
	return nil
}

// failEntry records a failure on the entry and dispatches the next pending
// entry, so a single bad video never blocks the queue
func (c *coordinator) failEntry(ctx context.Context, entry *model.QueueEntry, cause error) error {
	now := time.Now()
	entry.Status = model.QueueStatusError
	entry.ErrorMessage = cause.Error()
	entry.CompletedAt = &now
	if err := c.store.Update(ctx, entry); err != nil {
		return err
	}

	c.scheduleNext()
	return cause
}

// watchJob mirrors the job's progress onto the entry and finalizes the
// entry when the job reaches a terminal state. Runner listeners must not
// call back into the runner, so unsubscription and the next dispatch run
// on their own goroutine.
func (c *coordinator) watchJob(entryID, jobID string) {
	var finishOnce sync.Once
	unsubCh := make(chan func(), 1)

	unsubscribe := c.runner.Subscribe(func(job model.TranslationJob) {
		if job.ID != jobID {
			return
		}
		if job.Status.IsTerminal() {
			finishOnce.Do(func() {
				go func() {
					unsub := <-unsubCh
					unsub()
					if c.finalizeEntry(entryID, job) {
						time.Sleep(c.advanceDelay)
						_ = c.StartAutoProcess(context.Background())
					}
				}()
			})
			return
		}
		c.mirrorProgress(entryID, job)
	})
	unsubCh <- unsubscribe
}

// mirrorProgress copies the job's batch progress onto the queue entry
func (c *coordinator) mirrorProgress(entryID string, job model.TranslationJob) {
	ctx := context.Background()
	entry, err := c.store.Get(ctx, entryID)
	if err != nil || entry.Status != model.QueueStatusTranslating {
		return
	}
	if entry.CompletedBatches == job.Progress.CompletedBatches &&
		entry.TotalBatches == job.Progress.TotalBatches {
		return
	}
	entry.CompletedBatches = job.Progress.CompletedBatches
	entry.TotalBatches = job.Progress.TotalBatches
	_ = c.store.Update(ctx, entry)
}

// finalizeEntry moves the entry into its terminal queue state. It reports
// whether the queue should advance to the next pending entry: a pause,
// stop, or abort has already taken the entry out of translating, and those
// are deliberate user actions that halt auto-processing.
func (c *coordinator) finalizeEntry(entryID string, job model.TranslationJob) bool {
	ctx := context.Background()
	entry, err := c.store.Get(ctx, entryID)
	if err != nil || entry.Status != model.QueueStatusTranslating {
		return false
	}

	now := time.Now()
	entry.CompletedBatches = job.Progress.CompletedBatches
	entry.TotalBatches = job.Progress.TotalBatches
	entry.CompletedAt = &now
	if job.Status == model.JobStatusCompleted {
		entry.Status = model.QueueStatusCompleted
		entry.ErrorMessage = ""
	} else {
		entry.Status = model.QueueStatusError
		entry.ErrorMessage = job.ErrorMessage
	}
	_ = c.store.Update(ctx, entry)
	return true
}

// scheduleNext dispatches the next pending entry after the advance delay
func (c *coordinator) scheduleNext() {
	go func() {
		time.Sleep(c.advanceDelay)
		_ = c.StartAutoProcess(context.Background())
	}()
}
