package keyspace_test

import (
	"errors"
	"slices"
	"testing"

	"zipcrack/internal/keyspace"
)

func drain(t *testing.T, it *keyspace.Iterator) []string {
	t.Helper()
	var out []string
	for {
		candidate, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, candidate)
	}
}

func TestBinaryLengthThreeOrder(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("01"), 3, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	got := drain(t, space.Iterator(0))
	want := []string{"000", "001", "010", "011", "100", "101", "110", "111"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
}

func TestEnumerationIsCompleteAndDistinct(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("abc1"), 4, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	if space.Size() != 256 {
		t.Fatalf("unexpected size %d", space.Size())
	}
	got := drain(t, space.Iterator(0))
	if uint64(len(got)) != space.Size() {
		t.Fatalf("expected %d candidates, got %d", space.Size(), len(got))
	}
	seen := make(map[string]struct{}, len(got))
	for _, candidate := range got {
		if _, dup := seen[candidate]; dup {
			t.Fatalf("duplicate candidate %q", candidate)
		}
		seen[candidate] = struct{}{}
	}
}

func TestSeekMatchesDiscardedPrefix(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("xyz"), 4, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	full := drain(t, space.Iterator(0))
	for _, k := range []uint64{0, 1, 2, 3, 17, 40, 80, 81} {
		suffix := drain(t, space.Iterator(k))
		if !slices.Equal(suffix, full[k:]) {
			t.Fatalf("skip(%d) mismatch: got %v want %v", k, suffix, full[k:])
		}
	}
}

func TestCandidateAndOrdinalRoundTrip(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("ab"), 5, "zz")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	if space.Size() != 8 {
		t.Fatalf("unexpected size %d", space.Size())
	}
	it := space.Iterator(0)
	for ordinal := uint64(0); ordinal < space.Size(); ordinal++ {
		next, _ := it.Next()
		candidate, err := space.Candidate(ordinal)
		if err != nil {
			t.Fatalf("Candidate(%d): %v", ordinal, err)
		}
		if candidate != next {
			t.Fatalf("Candidate(%d) = %q, iterator yielded %q", ordinal, candidate, next)
		}
		back, err := space.Ordinal(candidate)
		if err != nil {
			t.Fatalf("Ordinal(%q): %v", candidate, err)
		}
		if back != ordinal {
			t.Fatalf("Ordinal(%q) = %d, want %d", candidate, back, ordinal)
		}
	}
	if _, err := space.Candidate(space.Size()); !errors.Is(err, keyspace.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := space.Ordinal("zzabc"); !errors.Is(err, keyspace.ErrNotInSpace) {
		t.Fatalf("expected ErrNotInSpace, got %v", err)
	}
	if _, err := space.Ordinal("aaaaa"); !errors.Is(err, keyspace.ErrNotInSpace) {
		t.Fatalf("expected prefix mismatch, got %v", err)
	}
}

func TestPrefixOfFullLengthIsSingleCandidate(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("01"), 3, "101")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	if space.Size() != 1 {
		t.Fatalf("expected single candidate, got size %d", space.Size())
	}
	got := drain(t, space.Iterator(0))
	if !slices.Equal(got, []string{"101"}) {
		t.Fatalf("unexpected candidates %v", got)
	}
}

func TestPrefixConstrainsEnumeration(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("01"), 3, "1")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	got := drain(t, space.Iterator(0))
	want := []string{"100", "101", "110", "111"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNewCharsetSpaceRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		charset string
		length  int
		prefix  string
	}{
		{name: "zero length", charset: "ab", length: 0},
		{name: "empty charset", charset: "", length: 2},
		{name: "duplicate symbol", charset: "aba", length: 2},
		{name: "prefix too long", charset: "ab", length: 2, prefix: "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := keyspace.NewCharsetSpace([]rune(tc.charset), tc.length, tc.prefix); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSpaceTooLarge(t *testing.T) {
	charset, err := keyspace.Charset(keyspace.CharsetFull, "")
	if err != nil {
		t.Fatalf("Charset: %v", err)
	}
	if _, err := keyspace.NewCharsetSpace(charset, 10, ""); !errors.Is(err, keyspace.ErrSpaceTooLarge) {
		t.Fatalf("expected ErrSpaceTooLarge, got %v", err)
	}
	if _, err := keyspace.NewCharsetSpace(charset, 9, ""); err != nil {
		t.Fatalf("length 9 should fit: %v", err)
	}
}

func TestIteratorSeekBounds(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("01"), 2, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	it := space.Iterator(0)
	if err := it.Seek(5); !errors.Is(err, keyspace.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := it.Seek(4); err != nil {
		t.Fatalf("Seek to size: %v", err)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected exhausted iterator")
	}
	if it.Remaining() != 0 {
		t.Fatalf("expected nothing remaining, got %d", it.Remaining())
	}
}
