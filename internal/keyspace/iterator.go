package keyspace

import "fmt"

// Batch is a contiguous run of candidates starting at ordinal Start.
type Batch struct {
	Start      uint64
	Candidates []string
}

// End returns the ordinal one past the last candidate in the batch.
func (b Batch) End() uint64 { return b.Start + uint64(len(b.Candidates)) }

// Len reports the number of candidates in the batch.
func (b Batch) Len() int { return len(b.Candidates) }

// Iterator walks a Space in ordinal order like an odometer. It is not safe
// for concurrent use.
type Iterator struct {
	space  Space
	digits []int
	buf    []rune
	pos    uint64
}

// Seek moves the iterator to ordinal n in O(length). Seeking to Size leaves
// the iterator exhausted.
func (it *Iterator) Seek(n uint64) error {
	if n > it.space.size {
		return fmt.Errorf("%w: seek %d > size %d", ErrOutOfRange, n, it.space.size)
	}
	it.pos = n
	if n == it.space.size {
		return nil
	}
	it.digits = it.space.decode(n)
	it.buf = make([]rune, it.space.Length())
	copy(it.buf, it.space.prefix)
	base := len(it.space.prefix)
	for i, d := range it.digits {
		it.buf[base+i] = it.space.alphabets[i][d]
	}
	return nil
}

// Position returns the ordinal of the candidate the next call to Next yields.
func (it *Iterator) Position() uint64 { return it.pos }

// Remaining reports how many candidates are left.
func (it *Iterator) Remaining() uint64 { return it.space.size - it.pos }

// Next returns the candidate at Position and advances by one.
func (it *Iterator) Next() (string, bool) {
	if it.pos >= it.space.size {
		return "", false
	}
	candidate := string(it.buf)
	it.pos++
	if it.pos < it.space.size {
		it.increment()
	}
	return candidate, true
}

// NextBatch returns up to max contiguous candidates. It reports false once
// the space is exhausted; a returned batch is never empty.
func (it *Iterator) NextBatch(max int) (Batch, bool) {
	if max < 1 {
		max = 1
	}
	if it.pos >= it.space.size {
		return Batch{}, false
	}
	n := uint64(max)
	if rem := it.Remaining(); rem < n {
		n = rem
	}
	batch := Batch{Start: it.pos, Candidates: make([]string, 0, n)}
	for i := uint64(0); i < n; i++ {
		candidate, _ := it.Next()
		batch.Candidates = append(batch.Candidates, candidate)
	}
	return batch, true
}

func (it *Iterator) increment() {
	base := len(it.space.prefix)
	for i := len(it.digits) - 1; i >= 0; i-- {
		alphabet := it.space.alphabets[i]
		it.digits[i]++
		if it.digits[i] < len(alphabet) {
			it.buf[base+i] = alphabet[it.digits[i]]
			return
		}
		it.digits[i] = 0
		it.buf[base+i] = alphabet[0]
	}
}
