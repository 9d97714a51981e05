package checkpoint_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"zipcrack/internal/checkpoint"
	"zipcrack/internal/logging"
)

func newStore(t *testing.T) *checkpoint.FileStore {
	t.Helper()
	return checkpoint.NewFileStore(filepath.Join(t.TempDir(), "state", "zipcrack_status.txt"), logging.NewNop())
}

func TestSaveThenLoadReturnsCursor(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	cursors := []checkpoint.Cursor{
		{Length: 3, Prefix: "", Offset: 5},
		{Length: 10, Prefix: "ab", Offset: 1 << 40},
		{Length: 4, Prefix: "a|b", Offset: 0},
		{Length: 2, Prefix: "é", Offset: 7},
	}
	for _, want := range cursors {
		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("Save(%v): %v", want, err)
		}
		got, ok, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !ok {
			t.Fatal("expected checkpoint to be present")
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
		}
	}
}

func TestLoadMissingIsAbsent(t *testing.T) {
	store := newStore(t)
	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected no checkpoint")
	}
}

func TestLoadCorruptIsAbsent(t *testing.T) {
	store := newStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, content := range []string{"", "garbage", "3|abc", "x|ab|5", "3|ab|-1", "2|abc|0"} {
		if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		_, ok, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%q): unexpected error %v", content, err)
		}
		if ok {
			t.Fatalf("Load(%q): expected corrupt record to be treated as absent", content)
		}
	}
}

func TestClearRemovesRecordAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if err := store.Save(ctx, checkpoint.Cursor{Length: 8, Offset: 10000}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatal("expected checkpoint to be cleared")
	}
}

func TestConcurrentSavesNeverExposePartialRecord(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if err := store.Save(ctx, checkpoint.Cursor{Length: 6, Prefix: "seed", Offset: 0}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = store.Save(ctx, checkpoint.Cursor{Length: 6, Prefix: "seed", Offset: uint64(w*100 + i)})
			}
		}(w)
	}
	for i := 0; i < 100; i++ {
		if _, ok, err := store.Load(ctx); err != nil || !ok {
			t.Fatalf("Load during writes: ok=%v err=%v", ok, err)
		}
	}
	wg.Wait()
}

func TestParseCursor(t *testing.T) {
	got, err := checkpoint.ParseCursor(" 10|Pld|12345\n")
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	want := checkpoint.Cursor{Length: 10, Prefix: "Pld", Offset: 12345}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.String() != "10|Pld|12345" {
		t.Fatalf("unexpected record %q", got.String())
	}
	if _, err := checkpoint.ParseCursor("0||0"); !errors.Is(err, checkpoint.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for zero length, got %v", err)
	}
}

func TestScopeWrittenWithSaveAndCleared(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	scope := checkpoint.CharsetScope([]rune("abc"))
	store.BindScope(scope)
	if err := store.Save(ctx, checkpoint.Cursor{Length: 3, Offset: 5}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Scope(ctx)
	if err != nil || got != scope {
		t.Fatalf("Scope = %q, %v; want %q", got, err, scope)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(store.Path() + ".scope"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected scope file removed, stat err=%v", err)
	}
	if got, err := store.Scope(ctx); err != nil || got != "" {
		t.Fatalf("Scope after Clear = %q, %v", got, err)
	}
}

func TestUnboundSaveDropsStaleScope(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "zipcrack_status.txt")
	scoped := checkpoint.NewFileStore(path, logging.NewNop())
	scoped.BindScope(checkpoint.CharsetScope([]rune("01")))
	if err := scoped.Save(ctx, checkpoint.Cursor{Length: 2, Offset: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	unbound := checkpoint.NewFileStore(path, logging.NewNop())
	if err := unbound.Save(ctx, checkpoint.Cursor{Length: 2, Offset: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, err := unbound.Scope(ctx); err != nil || got != "" {
		t.Fatalf("expected no scope after an unbound save, got %q, %v", got, err)
	}
}

func TestCharsetScopeDependsOnOrder(t *testing.T) {
	if checkpoint.CharsetScope([]rune("01")) == checkpoint.CharsetScope([]rune("10")) {
		t.Fatal("reordered charsets index candidates differently and need distinct scopes")
	}
	if checkpoint.CharsetScope([]rune("abc")) != checkpoint.CharsetScope([]rune("abc")) {
		t.Fatal("scope must be stable")
	}
}
