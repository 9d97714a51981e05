package oracle

import (
	"context"
	"errors"
)

var (
	// ErrArchiveNotFound reports a missing or unreadable archive.
	ErrArchiveNotFound = errors.New("archive not found or unreadable")
	// ErrNotEncrypted reports an archive with no encrypted entry to probe.
	ErrNotEncrypted = errors.New("archive has no encrypted entries")
	// ErrTransient wraps I/O failures that persisted through every retry.
	// Callers count the candidate as rejected.
	ErrTransient = errors.New("transient oracle failure")
)

// Oracle decides whether a candidate is the secret. A wrong candidate is
// (false, nil); a non-nil error means the verdict is unknown.
type Oracle interface {
	Test(ctx context.Context, candidate string) (bool, error)
}

// Materializer performs the side effect that follows a successful search.
// Calling it twice with the same candidate must leave the same result.
type Materializer interface {
	Materialize(ctx context.Context, candidate string) error
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, candidate string) (bool, error)

// Test calls f.
func (f Func) Test(ctx context.Context, candidate string) (bool, error) {
	return f(ctx, candidate)
}

// Equals returns an oracle accepting exactly secret.
func Equals(secret string) Oracle {
	return Func(func(_ context.Context, candidate string) (bool, error) {
		return candidate == secret, nil
	})
}
