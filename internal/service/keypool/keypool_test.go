package keypool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ytsubs/internal/errors"
)

func rateLimitErr() error {
	return apperrors.New(apperrors.CodeRateLimited, "quota exceeded for key")
}

func transientErr() error {
	return apperrors.New(apperrors.CodeUnavailable, "model overloaded")
}

func fatalErr() error {
	return apperrors.New(apperrors.CodeInvalidArg, "bad request")
}

func newFastPool(keys ...string) *Pool {
	p := NewPool(keys)
	p.backoffBase = time.Millisecond
	return p
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "rate limited", err: rateLimitErr(), want: KindRateLimited},
		{name: "unavailable", err: transientErr(), want: KindTransient},
		{name: "invalid argument", err: fatalErr(), want: KindFatal},
		{name: "plain error", err: errors.New("boom"), want: KindFatal},
		{name: "wrapped rate limit", err: apperrors.Wrap(rateLimitErr(), apperrors.CodeRateLimited, "outer"), want: KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestPool_Rotate(t *testing.T) {
	pool := NewPool([]string{"key-a", "key-b", "key-c"})

	key, ok := pool.Current()
	require.True(t, ok)
	assert.Equal(t, "key-a", key)

	assert.True(t, pool.Rotate())
	key, _ = pool.Current()
	assert.Equal(t, "key-b", key)

	assert.True(t, pool.Rotate())
	assert.True(t, pool.Rotate())
	key, _ = pool.Current()
	assert.Equal(t, "key-a", key) // wrapped around
}

func TestPool_Rotate_SingleKey(t *testing.T) {
	pool := NewPool([]string{"only"})
	assert.False(t, pool.Rotate())

	empty := NewPool(nil)
	assert.False(t, empty.Rotate())
	_, ok := empty.Current()
	assert.False(t, ok)
}

func TestPool_Initialize_ResetsPointer(t *testing.T) {
	pool := NewPool([]string{"key-a", "key-b"})
	pool.Rotate()

	pool.Initialize([]string{"key-x", "key-y", "key-z"})
	key, ok := pool.Current()
	require.True(t, ok)
	assert.Equal(t, "key-x", key)
	assert.Equal(t, 3, pool.Size())
}

func TestPool_Masked(t *testing.T) {
	pool := NewPool([]string{"AIzaSyA1234567890abcdef", "short"})
	masked := pool.Masked(0)
	assert.True(t, len(masked) > 0)
	assert.NotContains(t, masked, "1234567890")
	assert.Contains(t, masked, "AIza")

	assert.Equal(t, "*****", pool.Masked(1))
	assert.Equal(t, "", pool.Masked(5))
}

func TestRunWithRotation_RateLimitRotates(t *testing.T) {
	pool := newFastPool("key-0", "key-1", "key-2")

	var used []string
	err := pool.RunWithRotation(context.Background(), func(ctx context.Context, key string) error {
		used = append(used, key)
		if key == "key-0" {
			return rateLimitErr()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"key-0", "key-1"}, used)

	// The pointer stays where rotation left it for later calls
	current, _ := pool.Current()
	assert.Equal(t, "key-1", current)
}

func TestRunWithRotation_AllKeysExhausted(t *testing.T) {
	pool := newFastPool("key-0", "key-1", "key-2")

	var used []string
	err := pool.RunWithRotation(context.Background(), func(ctx context.Context, key string) error {
		used = append(used, key)
		return rateLimitErr()
	})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeExhausted, appErr.Code)
	assert.Contains(t, appErr.Message, "3 tried")

	// Every key tried exactly once, no wrap past the exhaustion boundary
	assert.Equal(t, []string{"key-0", "key-1", "key-2"}, used)
}

func TestRunWithRotation_TransientRetriesSameKey(t *testing.T) {
	pool := newFastPool("key-0", "key-1")

	var used []string
	calls := 0
	err := pool.RunWithRotation(context.Background(), func(ctx context.Context, key string) error {
		used = append(used, key)
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})

	require.NoError(t, err)
	// All three attempts land on the same key: 5xx is about service
	// health, so switching credentials would not help
	assert.Equal(t, []string{"key-0", "key-0", "key-0"}, used)
}

func TestRunWithRotation_FatalAbortsImmediately(t *testing.T) {
	pool := newFastPool("key-0", "key-1")

	calls := 0
	err := pool.RunWithRotation(context.Background(), func(ctx context.Context, key string) error {
		calls++
		return fatalErr()
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidArg, appErr.Code)

	// Fatal errors never rotate
	current, _ := pool.Current()
	assert.Equal(t, "key-0", current)
}

func TestRunWithRotation_EmptyPool(t *testing.T) {
	pool := NewPool(nil)

	err := pool.RunWithRotation(context.Background(), func(ctx context.Context, key string) error {
		t.Fatal("operation must not run without credentials")
		return nil
	})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidArg, appErr.Code)
}

func TestRunWithRotation_ContextCancelled(t *testing.T) {
	pool := newFastPool("key-0", "key-1")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := pool.RunWithRotation(ctx, func(ctx context.Context, key string) error {
		calls++
		cancel()
		return transientErr()
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
