package keyspace_test

import (
	"slices"
	"testing"

	"zipcrack/internal/keyspace"
)

func TestBatchesReconstructRemainingEnumeration(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("abc"), 3, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	full := drain(t, space.Iterator(0))

	for _, start := range []uint64{0, 4, 26} {
		for _, size := range []int{1, 4, 7, 100} {
			it := space.Iterator(start)
			var joined []string
			next := start
			for {
				batch, ok := it.NextBatch(size)
				if !ok {
					break
				}
				if batch.Len() == 0 || batch.Len() > size {
					t.Fatalf("batch size %d out of bounds (max %d)", batch.Len(), size)
				}
				if batch.Start != next {
					t.Fatalf("batch starts at %d, want %d", batch.Start, next)
				}
				next = batch.End()
				joined = append(joined, batch.Candidates...)
			}
			if !slices.Equal(joined, full[start:]) {
				t.Fatalf("start=%d size=%d: batches do not reconstruct suffix", start, size)
			}
		}
	}
}

func TestIteratorPastEndIsExhausted(t *testing.T) {
	space, err := keyspace.NewCharsetSpace([]rune("01"), 3, "")
	if err != nil {
		t.Fatalf("NewCharsetSpace: %v", err)
	}
	it := space.Iterator(space.Size() + 10)
	if _, ok := it.NextBatch(4); ok {
		t.Fatal("expected no batch from an exhausted iterator")
	}
}
