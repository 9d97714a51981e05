package history

import (
	"context"
	"errors"
	"testing"
)

func TestRetryOnBusyRetriesLockedDatabase(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryOnBusy: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	want := errors.New("no such table: runs")
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestRetryOnBusyGivesUp(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	if err == nil || !isSQLiteBusy(err) {
		t.Fatalf("expected busy error after retries, got %v", err)
	}
	if calls != busyRetryAttempts {
		t.Fatalf("expected %d calls, got %d", busyRetryAttempts, calls)
	}
}
