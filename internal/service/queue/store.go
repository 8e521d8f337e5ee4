package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
	queuerepo "ytsubs/internal/repository/queue"
	"ytsubs/internal/service/youtube"
)

// store implements Store on top of the queue repository
type store struct {
	repo       queuerepo.Repository
	configName string
	pageSize   int

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
}

// NewStore creates a Store using the given repository. Entries are created
// under configName; listings use pageSize entries per page.
func NewStore(repo queuerepo.Repository, configName string, pageSize int) Store {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &store{
		repo:       repo,
		configName: configName,
		pageSize:   pageSize,
		observers:  make(map[int]Observer),
	}
}

func (s *store) Initialize(ctx context.Context) error {
	reset, err := s.repo.ResetStale(ctx)
	if err != nil {
		return err
	}
	if reset > 0 {
		s.notify()
	}
	return nil
}

func (s *store) Add(ctx context.Context, req AddRequest) (*model.QueueEntry, bool, error) {
	videoID := youtube.ExtractVideoID(req.VideoURL)
	if videoID == "" {
		return nil, false, apperrors.New(apperrors.CodeInvalidArg,
			"not a recognized YouTube URL: "+req.VideoURL)
	}

	existing, err := s.repo.GetByVideoID(ctx, videoID)
	if err == nil {
		return existing, true, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	entry := &model.QueueEntry{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		VideoURL:   req.VideoURL,
		Title:      req.Title,
		Thumbnail:  req.Thumbnail,
		Duration:   req.DurationSeconds,
		Status:     model.QueueStatusPending,
		ConfigName: s.configName,
		AddedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		// A concurrent add of the same video loses the race at the
		// unique constraint; surface the winner instead
		if isConflict(err) {
			if winner, getErr := s.repo.GetByVideoID(ctx, videoID); getErr == nil {
				return winner, true, nil
			}
		}
		return nil, false, err
	}

	s.notify()
	return entry, false, nil
}

func (s *store) Get(ctx context.Context, id string) (*model.QueueEntry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *store) IsInQueue(ctx context.Context, videoURL string) (*model.QueueEntry, error) {
	videoID := youtube.ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg,
			"not a recognized YouTube URL: "+videoURL)
	}

	entry, err := s.repo.GetByVideoID(ctx, videoID)
	if isNotFound(err) {
		return nil, nil
	}
	return entry, err
}

func (s *store) ItemsByStatus(ctx context.Context, status model.QueueStatus, page int) ([]*model.QueueEntry, int, int, error) {
	if !status.IsValid() {
		return nil, 0, 0, apperrors.New(apperrors.CodeInvalidArg,
			"unknown queue status: "+string(status))
	}
	if page < 1 {
		page = 1
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	total := countFor(counts, status)
	totalPages := (total + s.pageSize - 1) / s.pageSize

	entries, err := s.repo.ListByStatus(ctx, status, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	return entries, total, totalPages, nil
}

func (s *store) Counts(ctx context.Context) (model.QueueCounts, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *store) NextPending(ctx context.Context) (*model.QueueEntry, error) {
	entry, err := s.repo.OldestPending(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	return entry, err
}

func (s *store) Update(ctx context.Context, entry *model.QueueEntry) error {
	if err := s.repo.Update(ctx, entry); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *store) MoveToPending(ctx context.Context, id string) (*model.QueueEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch entry.Status {
	case model.QueueStatusError, model.QueueStatusPaused, model.QueueStatusCompleted:
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArg,
			"cannot requeue an entry with status "+string(entry.Status))
	}

	entry.Status = model.QueueStatusPending
	entry.ErrorMessage = ""
	entry.StartedAt = nil
	entry.CompletedAt = nil
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.notify()
	return entry, nil
}

func (s *store) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *store) ClearByStatus(ctx context.Context, status model.QueueStatus) (int64, error) {
	if !status.IsValid() {
		return 0, apperrors.New(apperrors.CodeInvalidArg,
			"unknown queue status: "+string(status))
	}

	deleted, err := s.repo.DeleteByStatus(ctx, status)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.notify()
	}
	return deleted, nil
}

func (s *store) ClearBacklog(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteByStatus(ctx,
		model.QueueStatusPending, model.QueueStatusError)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.notify()
	}
	return deleted, nil
}

func (s *store) Subscribe(observer Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify fans out to observers outside the lock so an observer may call
// back into the store
func (s *store) notify() {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, ob := range s.observers {
		observers = append(observers, ob)
	}
	s.mu.Unlock()

	for _, ob := range observers {
		ob()
	}
}

// countFor picks the count for one status out of the aggregate
func countFor(counts model.QueueCounts, status model.QueueStatus) int {
	switch status {
	case model.QueueStatusPending:
		return counts.Pending
	case model.QueueStatusTranslating:
		return counts.Translating
	case model.QueueStatusPaused:
		return counts.Paused
	case model.QueueStatusCompleted:
		return counts.Completed
	case model.QueueStatusError:
		return counts.Error
	default:
		return 0
	}
}

func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound
}

func isConflict(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.CodeConflict
}
