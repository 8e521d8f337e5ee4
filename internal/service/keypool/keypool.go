package keypool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "ytsubs/internal/errors"
)

const (
	// maxTransientRetries bounds backed-off retries of the same key on a
	// degraded-service error
	maxTransientRetries = 3

	// transientBackoffBase is the first backoff delay; it doubles per retry
	transientBackoffBase = time.Second
)

// ErrorKind classifies a remote translation failure for retry purposes
type ErrorKind int

const (
	// KindFatal aborts immediately: bad request, auth failure, anything
	// not known to be retryable
	KindFatal ErrorKind = iota
	// KindRateLimited means this credential is throttled; another
	// credential may still work
	KindRateLimited
	// KindTransient means the service itself is degraded; switching
	// credentials would not help
	KindTransient
)

// Classify maps an error to its retry classification. Rate limits (429)
// reflect credential health, service errors (500/503) reflect service
// health; the boundary client encodes that distinction as AppError codes.
func Classify(err error) ErrorKind {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return KindFatal
	}
	switch appErr.Code {
	case apperrors.CodeRateLimited:
		return KindRateLimited
	case apperrors.CodeUnavailable:
		return KindTransient
	default:
		return KindFatal
	}
}

// Operation is a remote call executed with one credential
type Operation func(ctx context.Context, key string) error

// Pool owns the API credentials and wraps remote calls with rotate-on-429
// retry. The current pointer is shared by every caller: a rotation
// triggered by one batch window changes the credential later windows start
// with, which is intended as a best-effort hint.
type Pool struct {
	mu      sync.Mutex
	keys    []string
	current int

	// backoffBase is overridable in tests to avoid real sleeps
	backoffBase time.Duration
}

// NewPool creates a pool holding the given credentials
func NewPool(keys []string) *Pool {
	p := &Pool{backoffBase: transientBackoffBase}
	p.Initialize(keys)
	return p
}

// Initialize replaces the pool contents and resets the current pointer.
// Calling it again with the same keys is harmless.
func (p *Pool) Initialize(keys []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append([]string(nil), keys...)
	p.current = 0
}

// Size returns the number of credentials in the pool
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Current returns the credential at the current pointer
func (p *Pool) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return "", false
	}
	return p.keys[p.current], true
}

// Rotate advances the current pointer to the next credential. It reports
// false when the pool has one credential or fewer, where rotation cannot
// change anything.
func (p *Pool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) <= 1 {
		return false
	}
	p.current = (p.current + 1) % len(p.keys)
	return true
}

// Masked returns a display form of the credential at index i
func (p *Pool) Masked(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.keys) {
		return ""
	}
	return maskKey(p.keys[i])
}

// maskKey hides all but the first and last few characters of a key
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// RunWithRotation executes op with the current credential, handling the
// three failure classes:
//   - rate-limited: rotate and retry immediately until every credential has
//     been tried once within this call
//   - transient: retry the same credential after exponential backoff, up to
//     maxTransientRetries, without rotating
//   - fatal: return at once
//
// When every credential fails on a retryable basis the returned error has
// code EXHAUSTED and names the number of credentials tried.
func (p *Pool) RunWithRotation(ctx context.Context, op Operation) error {
	size := p.Size()
	if size == 0 {
		return apperrors.New(apperrors.CodeInvalidArg, "no API credentials configured")
	}

	var lastErr error
	tried := 0

	for tried < size {
		key, ok := p.Current()
		if !ok {
			break
		}

		err := p.runWithBackoff(ctx, op, key)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}

		switch Classify(err) {
		case KindRateLimited:
			lastErr = err
			tried++
			p.Rotate()
		case KindTransient:
			// Backoff retries for this key are already spent
			lastErr = err
			tried++
			p.Rotate()
		default:
			return err
		}
	}

	return apperrors.Wrap(lastErr, apperrors.CodeExhausted,
		fmt.Sprintf("all credentials failed (%d tried)", tried))
}

// runWithBackoff retries op on the same key while it fails transiently
func (p *Pool) runWithBackoff(ctx context.Context, op Operation, key string) error {
	backoff := p.backoffBase
	if backoff <= 0 {
		backoff = transientBackoffBase
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = op(ctx, key)
		if err == nil || Classify(err) != KindTransient || attempt >= maxTransientRetries {
			return err
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.CodeInternal, "translation cancelled during backoff")
		}
		backoff *= 2
	}
}
