package batch

import (
	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
)

// PlanWindows splits a video into contiguous, non-overlapping time windows.
// A video no longer than maxWindowSeconds+toleranceSeconds stays a single
// window; the tolerance avoids splitting videos that are "almost" one
// window long. The plan is deterministic: the same duration and settings
// always produce the same windows, which is what lets an interrupted job
// match its saved fragments back to windows on resume.
func PlanWindows(durationSeconds, maxWindowSeconds, toleranceSeconds int) ([]model.BatchWindow, error) {
	if durationSeconds <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video duration must be positive")
	}
	if maxWindowSeconds <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "max window seconds must be positive")
	}
	if toleranceSeconds < 0 {
		toleranceSeconds = 0
	}

	if durationSeconds <= maxWindowSeconds+toleranceSeconds {
		return []model.BatchWindow{
			{Index: 0, StartSeconds: 0, EndSeconds: durationSeconds},
		}, nil
	}

	count := (durationSeconds + maxWindowSeconds - 1) / maxWindowSeconds
	windows := make([]model.BatchWindow, 0, count)
	for i := 0; i < count; i++ {
		start := i * maxWindowSeconds
		end := start + maxWindowSeconds
		if end > durationSeconds {
			end = durationSeconds
		}
		windows = append(windows, model.BatchWindow{
			Index:        i,
			StartSeconds: start,
			EndSeconds:   end,
		})
	}

	return windows, nil
}
