package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"zipcrack/internal/fileutil"
	"zipcrack/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// Store persists the resumption cursor.
type Store interface {
	// Load returns the persisted cursor. A missing or corrupt record reports
	// false with a nil error.
	Load(ctx context.Context) (Cursor, bool, error)
	// Save atomically replaces the persisted cursor.
	Save(ctx context.Context, cursor Cursor) error
	// Clear removes the persisted cursor. Clearing an absent record is not an error.
	Clear(ctx context.Context) error
}

// Scoped is implemented by stores that record which keyspace a cursor
// indexes. An offset is an ordinal in one charset and names different
// candidates in any other.
type Scoped interface {
	// BindScope sets the scope recorded with every later Save.
	BindScope(scope string)
	// Scope returns the scope recorded with the persisted cursor, or "" when
	// none was written.
	Scope(ctx context.Context) (string, error)
}

// CharsetScope fingerprints an ordered charset.
func CharsetScope(charset []rune) string {
	return fmt.Sprintf("charset:%016x", xxhash.Sum64String(string(charset)))
}

// FileStore keeps the cursor in a single text file and its scope in
// "<path>.scope". Writers are serialized in-process by a mutex and across
// processes by an flock on "<path>.lock".
type FileStore struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	scope  string
	logger *slog.Logger
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "checkpoint"),
	}
}

// Path returns the checkpoint file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) scopePath() string { return s.path + ".scope" }

// BindScope sets the scope written alongside every later Save.
func (s *FileStore) BindScope(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
}

// Scope reads the scope stored with the current record.
func (s *FileStore) Scope(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.scopePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read checkpoint scope: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Load reads the checkpoint record.
func (s *FileStore) Load(ctx context.Context) (Cursor, bool, error) {
	if err := ctx.Err(); err != nil {
		return Cursor{}, false, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Cursor{}, false, nil
		}
		return Cursor{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	cursor, err := ParseCursor(string(data))
	if err != nil {
		logging.WarnWithContext(s.logger, "ignoring unreadable checkpoint", "checkpoint_corrupt",
			logging.String(logging.FieldPath, s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "search restarts from the beginning"),
			logging.String(logging.FieldErrorHint, "delete the file or pass --force-restart"),
		)
		return Cursor{}, false, nil
	}
	return cursor, true, nil
}

// Save writes cursor atomically, then the bound scope. A crash between the
// two leaves a record whose scope does not match, which readers discard.
func (s *FileStore) Save(ctx context.Context, cursor Cursor) error {
	return s.withLock(ctx, func() error {
		if err := fileutil.WriteFileAtomic(s.path, []byte(cursor.String()+"\n"), 0o644); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		if s.scope == "" {
			return removeIfExists(s.scopePath(), "checkpoint scope")
		}
		if err := fileutil.WriteFileAtomic(s.scopePath(), []byte(s.scope+"\n"), 0o644); err != nil {
			return fmt.Errorf("save checkpoint scope: %w", err)
		}
		return nil
	})
}

// Clear removes the checkpoint file.
func (s *FileStore) Clear(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		if err := removeIfExists(s.path, "checkpoint"); err != nil {
			return err
		}
		return removeIfExists(s.scopePath(), "checkpoint scope")
	})
}

func removeIfExists(path, what string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear %s: %w", what, err)
	}
	return nil
}

func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	if !ok {
		return errors.New("acquire checkpoint lock: not acquired")
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release checkpoint lock", logging.Error(err))
		}
	}()
	return fn()
}
