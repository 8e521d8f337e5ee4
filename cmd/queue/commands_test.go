package queue

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
	queueSvc "ytsubs/internal/service/queue"
)

// Mock queue store
type mockStore struct {
	AddFunc           func(ctx context.Context, req queueSvc.AddRequest) (*model.QueueEntry, bool, error)
	ItemsByStatusFunc func(ctx context.Context, status model.QueueStatus, page int) ([]*model.QueueEntry, int, int, error)
	CountsFunc        func(ctx context.Context) (model.QueueCounts, error)
	MoveToPendingFunc func(ctx context.Context, id string) (*model.QueueEntry, error)
	RemoveFunc        func(ctx context.Context, id string) error
	ClearBacklogFunc  func(ctx context.Context) (int64, error)
	ClearByStatusFunc func(ctx context.Context, status model.QueueStatus) (int64, error)
}

func (m *mockStore) Initialize(ctx context.Context) error { return nil }

func (m *mockStore) Add(ctx context.Context, req queueSvc.AddRequest) (*model.QueueEntry, bool, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, req)
	}
	return nil, false, nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*model.QueueEntry, error) {
	return nil, apperrors.New(apperrors.CodeNotFound, "queue entry not found")
}

func (m *mockStore) IsInQueue(ctx context.Context, videoURL string) (*model.QueueEntry, error) {
	return nil, nil
}

func (m *mockStore) ItemsByStatus(ctx context.Context, status model.QueueStatus, page int) ([]*model.QueueEntry, int, int, error) {
	if m.ItemsByStatusFunc != nil {
		return m.ItemsByStatusFunc(ctx, status, page)
	}
	return nil, 0, 0, nil
}

func (m *mockStore) Counts(ctx context.Context) (model.QueueCounts, error) {
	if m.CountsFunc != nil {
		return m.CountsFunc(ctx)
	}
	return model.QueueCounts{}, nil
}

func (m *mockStore) NextPending(ctx context.Context) (*model.QueueEntry, error) { return nil, nil }

func (m *mockStore) Update(ctx context.Context, entry *model.QueueEntry) error { return nil }

func (m *mockStore) MoveToPending(ctx context.Context, id string) (*model.QueueEntry, error) {
	if m.MoveToPendingFunc != nil {
		return m.MoveToPendingFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) Remove(ctx context.Context, id string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ClearByStatus(ctx context.Context, status model.QueueStatus) (int64, error) {
	if m.ClearByStatusFunc != nil {
		return m.ClearByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockStore) ClearBacklog(ctx context.Context) (int64, error) {
	if m.ClearBacklogFunc != nil {
		return m.ClearBacklogFunc(ctx)
	}
	return 0, nil
}

func (m *mockStore) Subscribe(observer queueSvc.Observer) func() { return func() {} }

// Mock queue coordinator
type mockCoordinator struct {
	PauseFunc  func(ctx context.Context, entryID string) error
	ResumeFunc func(ctx context.Context, entryID string) error
	AbortFunc  func(ctx context.Context, entryID string) error
}

func (m *mockCoordinator) StartTranslation(ctx context.Context, entryID string) error { return nil }
func (m *mockCoordinator) StartAutoProcess(ctx context.Context) error                 { return nil }

func (m *mockCoordinator) Pause(ctx context.Context, entryID string) error {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx, entryID)
	}
	return nil
}

func (m *mockCoordinator) Resume(ctx context.Context, entryID string) error {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx, entryID)
	}
	return nil
}

func (m *mockCoordinator) Stop(ctx context.Context, entryID string) error { return nil }

func (m *mockCoordinator) Abort(ctx context.Context, entryID string) error {
	if m.AbortFunc != nil {
		return m.AbortFunc(ctx, entryID)
	}
	return nil
}

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func testServices(store *mockStore, coord *mockCoordinator) *Services {
	return &Services{Store: store, Coordinator: coord}
}

func TestAddCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		setupMock      func(*mockStore)
		expectedOutput string
		wantErr        bool
	}{
		{
			name: "adds a new video",
			args: []string{"https://youtu.be/dQw4w9WgXcQ"},
			setupMock: func(m *mockStore) {
				m.AddFunc = func(ctx context.Context, req queueSvc.AddRequest) (*model.QueueEntry, bool, error) {
					return &model.QueueEntry{
						ID:      "entry-1",
						VideoID: "dQw4w9WgXcQ",
						Status:  model.QueueStatusPending,
						AddedAt: time.Now(),
					}, false, nil
				}
			},
			expectedOutput: "Added dQw4w9WgXcQ to the queue",
		},
		{
			name: "reports an already queued video",
			args: []string{"https://youtu.be/dQw4w9WgXcQ"},
			setupMock: func(m *mockStore) {
				m.AddFunc = func(ctx context.Context, req queueSvc.AddRequest) (*model.QueueEntry, bool, error) {
					return &model.QueueEntry{
						VideoID: "dQw4w9WgXcQ",
						Status:  model.QueueStatusCompleted,
					}, true, nil
				}
			},
			expectedOutput: "already queued (status: completed)",
		},
		{
			name: "rejects an unrecognized URL",
			args: []string{"https://example.com/video"},
			setupMock: func(m *mockStore) {
				m.AddFunc = func(ctx context.Context, req queueSvc.AddRequest) (*model.QueueEntry, bool, error) {
					return nil, false, apperrors.New(apperrors.CodeInvalidArg, "not a recognized YouTube URL")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			tt.setupMock(store)

			cmd := NewAddCommand(testServices(store, &mockCoordinator{}))
			output, err := executeCommand(cmd, tt.args...)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestListCommand(t *testing.T) {
	store := &mockStore{
		ItemsByStatusFunc: func(ctx context.Context, status model.QueueStatus, page int) ([]*model.QueueEntry, int, int, error) {
			assert.Equal(t, model.QueueStatusCompleted, status)
			assert.Equal(t, 2, page)
			return []*model.QueueEntry{
				{ID: "entry-1", VideoID: "dQw4w9WgXcQ", Status: status, Title: "First", AddedAt: time.Now()},
			}, 3, 2, nil
		},
	}

	cmd := NewListCommand(testServices(store, &mockCoordinator{}))
	output, err := executeCommand(cmd, "--status", "completed", "--page", "2")

	require.NoError(t, err)
	assert.Contains(t, output, "completed entries (page 2 of 2, 3 total)")
	assert.Contains(t, output, "dQw4w9WgXcQ")
}

func TestListCommand_Empty(t *testing.T) {
	cmd := NewListCommand(testServices(&mockStore{}, &mockCoordinator{}))
	output, err := executeCommand(cmd)

	require.NoError(t, err)
	assert.Contains(t, output, "No pending entries in the queue")
}

func TestCountsCommand(t *testing.T) {
	store := &mockStore{
		CountsFunc: func(ctx context.Context) (model.QueueCounts, error) {
			return model.QueueCounts{Pending: 2, Completed: 1}, nil
		},
	}

	cmd := NewCountsCommand(testServices(store, &mockCoordinator{}))
	output, err := executeCommand(cmd)

	require.NoError(t, err)
	assert.Contains(t, output, "pending:     2")
	assert.Contains(t, output, "total:       3")
}

func TestRemoveCommand(t *testing.T) {
	var removed string
	store := &mockStore{
		RemoveFunc: func(ctx context.Context, id string) error {
			removed = id
			return nil
		},
	}

	cmd := NewRemoveCommand(testServices(store, &mockCoordinator{}))
	output, err := executeCommand(cmd, "entry-1")

	require.NoError(t, err)
	assert.Equal(t, "entry-1", removed)
	assert.Contains(t, output, "Removed entry entry-1")
}

func TestRequeueCommand(t *testing.T) {
	store := &mockStore{
		MoveToPendingFunc: func(ctx context.Context, id string) (*model.QueueEntry, error) {
			return &model.QueueEntry{ID: id, VideoID: "dQw4w9WgXcQ", Status: model.QueueStatusPending}, nil
		},
	}

	cmd := NewRequeueCommand(testServices(store, &mockCoordinator{}))
	output, err := executeCommand(cmd, "entry-1")

	require.NoError(t, err)
	assert.Contains(t, output, "Requeued dQw4w9WgXcQ")
}

func TestClearCommand(t *testing.T) {
	t.Run("clears the backlog by default", func(t *testing.T) {
		store := &mockStore{
			ClearBacklogFunc: func(ctx context.Context) (int64, error) { return 4, nil },
		}

		cmd := NewClearCommand(testServices(store, &mockCoordinator{}))
		output, err := executeCommand(cmd)

		require.NoError(t, err)
		assert.Contains(t, output, "Deleted 4 entries")
	})

	t.Run("clears one status with the flag", func(t *testing.T) {
		var cleared model.QueueStatus
		store := &mockStore{
			ClearByStatusFunc: func(ctx context.Context, status model.QueueStatus) (int64, error) {
				cleared = status
				return 1, nil
			},
		}

		cmd := NewClearCommand(testServices(store, &mockCoordinator{}))
		output, err := executeCommand(cmd, "--status", "completed")

		require.NoError(t, err)
		assert.Equal(t, model.QueueStatusCompleted, cleared)
		assert.Contains(t, output, "Deleted 1 entries")
	})
}

func TestPauseCommand(t *testing.T) {
	var paused string
	coord := &mockCoordinator{
		PauseFunc: func(ctx context.Context, entryID string) error {
			paused = entryID
			return nil
		},
	}

	cmd := NewPauseCommand(testServices(&mockStore{}, coord))
	output, err := executeCommand(cmd, "entry-1")

	require.NoError(t, err)
	assert.Equal(t, "entry-1", paused)
	assert.Contains(t, output, "Paused entry entry-1")
}

func TestResumeCommand_Error(t *testing.T) {
	coord := &mockCoordinator{
		ResumeFunc: func(ctx context.Context, entryID string) error {
			return apperrors.New(apperrors.CodeInvalidArg, "entry is not paused: pending")
		},
	}

	cmd := NewResumeCommand(testServices(&mockStore{}, coord))
	_, err := executeCommand(cmd, "entry-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry is not paused")
}

func TestAbortCommand(t *testing.T) {
	var aborted string
	coord := &mockCoordinator{
		AbortFunc: func(ctx context.Context, entryID string) error {
			aborted = entryID
			return nil
		},
	}

	cmd := NewAbortCommand(testServices(&mockStore{}, coord))
	output, err := executeCommand(cmd, "entry-1")

	require.NoError(t, err)
	assert.Equal(t, "entry-1", aborted)
	assert.Contains(t, output, "Aborted entry entry-1")
}
