package batch

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ytsubs/internal/model"
)

// WindowResult is the translated text of one batch window
type WindowResult struct {
	Window  model.BatchWindow
	Content string
}

// TranslateFunc translates one window of the video
type TranslateFunc func(ctx context.Context, window model.BatchWindow) (string, error)

// ProgressFunc receives a full progress snapshot after every window state
// transition. Snapshots are complete, never deltas, so an observer can
// always render the whole picture without merging. Calls are serialized.
type ProgressFunc func(progress model.BatchProgress)

// RunWindows executes windows with at most maxConcurrent in flight. Workers
// pull the next unstarted window from a shared cursor until exhausted.
// Windows listed in completed (index to content) are taken as already done
// and never dispatched; their content is reused in the results.
//
// The first window failure stops dispatch of unstarted windows and makes
// the whole call fail: a subtitle track with holes in it is worthless, so
// partial window sets are never offered as a success. Windows that finished
// before the failure keep their completed status in the progress snapshots.
func RunWindows(
	ctx context.Context,
	windows []model.BatchWindow,
	maxConcurrent int,
	completed map[int]string,
	translate TranslateFunc,
	onProgress ProgressFunc,
) ([]WindowResult, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxConcurrent > len(windows) {
		maxConcurrent = len(windows)
	}

	run := &windowRun{
		windows:    windows,
		statuses:   make([]model.BatchStatus, len(windows)),
		contents:   make([]string, len(windows)),
		onProgress: onProgress,
	}
	for i := range run.statuses {
		run.statuses[i] = model.BatchStatusPending
	}
	for idx, content := range completed {
		if idx >= 0 && idx < len(windows) {
			run.statuses[idx] = model.BatchStatusCompleted
			run.contents[idx] = content
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	run.cancel = cancel

	// Initial snapshot so observers see the totals (and any windows
	// restored from fragments) before the first dispatch
	run.mu.Lock()
	run.notifyLocked(0)
	run.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < maxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.work(ctx, translate)
		}()
	}
	wg.Wait()

	run.mu.Lock()
	defer run.mu.Unlock()
	if run.firstErr != nil {
		return nil, run.firstErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	results := make([]WindowResult, len(windows))
	for i, w := range windows {
		results[i] = WindowResult{Window: w, Content: run.contents[i]}
	}
	return results, nil
}

// windowRun is the shared state of one RunWindows call
type windowRun struct {
	mu         sync.Mutex
	windows    []model.BatchWindow
	statuses   []model.BatchStatus
	contents   []string
	cursor     int
	firstErr   error
	cancel     context.CancelFunc
	onProgress ProgressFunc
}

// work pulls windows from the shared cursor until none remain
func (r *windowRun) work(ctx context.Context, translate TranslateFunc) {
	for {
		r.mu.Lock()
		if r.firstErr != nil || ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		// Skip windows already completed from restored fragments
		for r.cursor < len(r.windows) && r.statuses[r.cursor] == model.BatchStatusCompleted {
			r.cursor++
		}
		if r.cursor >= len(r.windows) {
			r.mu.Unlock()
			return
		}
		idx := r.cursor
		r.cursor++
		r.statuses[idx] = model.BatchStatusProcessing
		r.notifyLocked(idx)
		r.mu.Unlock()

		content, err := translate(ctx, r.windows[idx])

		r.mu.Lock()
		if err != nil {
			r.statuses[idx] = model.BatchStatusError
			if r.firstErr == nil {
				r.firstErr = err
				r.cancel()
			}
		} else {
			r.statuses[idx] = model.BatchStatusCompleted
			r.contents[idx] = content
		}
		r.notifyLocked(idx)
		r.mu.Unlock()
	}
}

// notifyLocked publishes a snapshot; callers must hold r.mu, which also
// serializes observer callbacks
func (r *windowRun) notifyLocked(currentIndex int) {
	if r.onProgress == nil {
		return
	}
	r.onProgress(r.snapshotLocked(currentIndex))
}

// snapshotLocked builds a full progress snapshot; callers must hold r.mu
func (r *windowRun) snapshotLocked(currentIndex int) model.BatchProgress {
	done := 0
	statuses := make([]model.BatchStatus, len(r.statuses))
	for i, s := range r.statuses {
		statuses[i] = s
		if s == model.BatchStatusCompleted {
			done++
		}
	}
	return model.BatchProgress{
		TotalBatches:      len(r.statuses),
		CompletedBatches:  done,
		CurrentBatchIndex: currentIndex,
		BatchStatuses:     statuses,
	}
}

// MergeResults combines per-window subtitle texts into one blob ordered by
// window start time. Workers finish out of order; the input order does not
// matter.
func MergeResults(results []WindowResult) string {
	sorted := make([]WindowResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Window.StartSeconds < sorted[j].Window.StartSeconds
	})

	parts := make([]string, 0, len(sorted))
	for _, res := range sorted {
		if content := strings.TrimSpace(res.Content); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}
