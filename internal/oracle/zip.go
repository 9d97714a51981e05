package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/avast/retry-go"
	"github.com/yeka/zip"

	"zipcrack/internal/fileutil"
	"zipcrack/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 50 * time.Millisecond
)

// ZipOptions configures a ZipArchive.
type ZipOptions struct {
	// ExtractDir receives the archive contents on Materialize.
	ExtractDir    string
	RetryAttempts uint
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

// ZipArchive verifies candidates against an encrypted ZIP archive. The
// archive is parsed once; each Test decrypts and fully reads the smallest
// encrypted entry so both AES authentication and CRC checks apply.
type ZipArchive struct {
	path       string
	reader     *zip.ReadCloser
	probe      *zip.File
	extractDir string
	attempts   uint
	delay      time.Duration
	logger     *slog.Logger

	extractMu sync.Mutex
}

// OpenZip parses the archive at path and selects the probe entry.
func OpenZip(path string, opts ZipOptions) (*ZipArchive, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %w", ErrArchiveNotFound, path, err)
		}
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	probe := pickProbe(reader.File)
	if probe == nil {
		_ = reader.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, path)
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	archive := &ZipArchive{
		path:       path,
		reader:     reader,
		probe:      probe,
		extractDir: opts.ExtractDir,
		attempts:   opts.RetryAttempts,
		delay:      opts.RetryDelay,
		logger:     logging.NewComponentLogger(opts.Logger, "oracle"),
	}
	archive.logger.Debug("archive opened",
		logging.String(logging.FieldPath, path),
		logging.String("probe_entry", probe.Name),
		logging.Uint64("probe_size", probe.UncompressedSize64),
		logging.Int("entries", len(reader.File)),
	)
	return archive, nil
}

// pickProbe prefers the smallest non-empty encrypted file. Empty entries
// carry no CRC to check, so they are used only as a last resort.
func pickProbe(files []*zip.File) *zip.File {
	var best, empty *zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() || !f.IsEncrypted() {
			continue
		}
		if f.UncompressedSize64 == 0 {
			if empty == nil {
				empty = f
			}
			continue
		}
		if best == nil || f.UncompressedSize64 < best.UncompressedSize64 {
			best = f
		}
	}
	if best != nil {
		return best
	}
	return empty
}

// Path returns the archive location.
func (z *ZipArchive) Path() string { return z.path }

// ProbeEntry returns the name of the entry used for verification.
func (z *ZipArchive) ProbeEntry() string { return z.probe.Name }

// Test reports whether candidate decrypts the probe entry. Transient read
// failures are retried; once retries run out the error wraps ErrTransient.
func (z *ZipArchive) Test(ctx context.Context, candidate string) (bool, error) {
	var accepted bool
	err := retry.Do(
		func() error {
			ok, err := z.try(candidate)
			accepted = ok
			return err
		},
		retry.Context(ctx),
		retry.Attempts(z.attempts),
		retry.Delay(z.delay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return accepted, nil
}

func (z *ZipArchive) try(candidate string) (bool, error) {
	entry := *z.probe
	entry.SetPassword(candidate)
	rc, err := entry.Open()
	if err != nil {
		if isTransient(err) {
			return false, err
		}
		return false, nil
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		if isTransient(err) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func isTransient(err error) bool {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	var errno syscall.Errno
	return errors.As(err, &errno)
}

// Materialize extracts every entry into the configured directory using
// candidate as the password. Re-running overwrites the same files.
func (z *ZipArchive) Materialize(ctx context.Context, candidate string) error {
	z.extractMu.Lock()
	defer z.extractMu.Unlock()

	if z.extractDir == "" {
		return errors.New("extract: no destination directory configured")
	}
	if err := os.MkdirAll(z.extractDir, 0o755); err != nil {
		return fmt.Errorf("extract: create %s: %w", z.extractDir, err)
	}
	for _, f := range z.reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := fileutil.SafeJoin(z.extractDir, f.Name)
		if err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extract %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractEntry(*f, candidate, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	z.logger.Info("archive extracted",
		logging.String(logging.FieldPath, z.extractDir),
		logging.Int("entries", len(z.reader.File)),
		logging.String(logging.FieldEventType, "archive_extracted"),
	)
	return nil
}

func extractEntry(entry zip.File, password, target string) error {
	if entry.IsEncrypted() {
		entry.SetPassword(password)
	}
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	return fileutil.CopyToFile(target, rc, mode)
}

// Close releases the archive handle.
func (z *ZipArchive) Close() error {
	if z == nil || z.reader == nil {
		return nil
	}
	return z.reader.Close()
}
