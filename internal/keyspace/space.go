package keyspace

import (
	"errors"
	"fmt"
	"math/bits"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrSpaceTooLarge is returned when the candidate count does not fit in a uint64.
	ErrSpaceTooLarge = errors.New("keyspace: space size overflows uint64")
	// ErrOutOfRange is returned for ordinals beyond the end of a space.
	ErrOutOfRange = errors.New("keyspace: ordinal out of range")
	// ErrNotInSpace is returned when a candidate cannot be produced by a space.
	ErrNotInSpace = errors.New("keyspace: candidate not in space")
)

// Space describes one enumeration pass. The zero value is an empty space.
type Space struct {
	prefix    []rune
	alphabets [][]rune
	index     []map[rune]int
	size      uint64
}

// NewCharsetSpace builds the space of every length-rune candidate that starts
// with prefix and fills the remaining positions from charset. A prefix that is
// already length runes long denotes a single candidate.
func NewCharsetSpace(charset []rune, length int, prefix string) (Space, error) {
	if length < 1 {
		return Space{}, fmt.Errorf("keyspace: length must be positive, got %d", length)
	}
	if len(charset) == 0 {
		return Space{}, errors.New("keyspace: charset is empty")
	}
	if !utf8.ValidString(prefix) {
		return Space{}, errors.New("keyspace: prefix is not valid UTF-8")
	}
	seen := make(map[rune]struct{}, len(charset))
	for _, r := range charset {
		if _, dup := seen[r]; dup {
			return Space{}, fmt.Errorf("keyspace: charset symbol %q repeated", r)
		}
		seen[r] = struct{}{}
	}
	prefixRunes := []rune(prefix)
	if len(prefixRunes) > length {
		return Space{}, fmt.Errorf("keyspace: prefix %q longer than length %d", prefix, length)
	}
	alphabet := append([]rune(nil), charset...)
	alphabets := make([][]rune, length-len(prefixRunes))
	for i := range alphabets {
		alphabets[i] = alphabet
	}
	return newSpace(prefixRunes, alphabets)
}

// NewPatternSpace builds the space of case variants of pattern. Each
// case-bearing rune contributes {lower, upper}; every other rune is fixed.
func NewPatternSpace(pattern string) (Space, error) {
	if pattern == "" {
		return Space{}, errors.New("keyspace: pattern is empty")
	}
	if !utf8.ValidString(pattern) {
		return Space{}, errors.New("keyspace: pattern is not valid UTF-8")
	}
	runes := []rune(pattern)
	alphabets := make([][]rune, len(runes))
	for i, r := range runes {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if lower != upper {
			alphabets[i] = []rune{lower, upper}
		} else {
			alphabets[i] = []rune{r}
		}
	}
	return newSpace(nil, alphabets)
}

func newSpace(prefix []rune, alphabets [][]rune) (Space, error) {
	size := uint64(1)
	index := make([]map[rune]int, len(alphabets))
	for i, alphabet := range alphabets {
		hi, lo := bits.Mul64(size, uint64(len(alphabet)))
		if hi != 0 {
			return Space{}, ErrSpaceTooLarge
		}
		size = lo
		lookup := make(map[rune]int, len(alphabet))
		for d, r := range alphabet {
			lookup[r] = d
		}
		index[i] = lookup
	}
	return Space{prefix: prefix, alphabets: alphabets, index: index, size: size}, nil
}

// Size reports the number of candidates in the space.
func (s Space) Size() uint64 { return s.size }

// Length reports the candidate length in runes, prefix included.
func (s Space) Length() int { return len(s.prefix) + len(s.alphabets) }

// Prefix returns the literal prefix shared by every candidate.
func (s Space) Prefix() string { return string(s.prefix) }

// Candidate decodes ordinal into its candidate string.
func (s Space) Candidate(ordinal uint64) (string, error) {
	if ordinal >= s.size {
		return "", fmt.Errorf("%w: %d >= %d", ErrOutOfRange, ordinal, s.size)
	}
	out := make([]rune, s.Length())
	copy(out, s.prefix)
	digits := s.decode(ordinal)
	for i, d := range digits {
		out[len(s.prefix)+i] = s.alphabets[i][d]
	}
	return string(out), nil
}

// Ordinal is the inverse of Candidate.
func (s Space) Ordinal(candidate string) (uint64, error) {
	runes := []rune(candidate)
	if len(runes) != s.Length() {
		return 0, fmt.Errorf("%w: length %d, want %d", ErrNotInSpace, len(runes), s.Length())
	}
	for i, r := range s.prefix {
		if runes[i] != r {
			return 0, fmt.Errorf("%w: prefix mismatch", ErrNotInSpace)
		}
	}
	var ordinal uint64
	for i, alphabet := range s.alphabets {
		d, ok := s.index[i][runes[len(s.prefix)+i]]
		if !ok {
			return 0, fmt.Errorf("%w: symbol %q at position %d", ErrNotInSpace, runes[len(s.prefix)+i], len(s.prefix)+i)
		}
		ordinal = ordinal*uint64(len(alphabet)) + uint64(d)
	}
	return ordinal, nil
}

// decode returns the digits of ordinal, most significant first.
func (s Space) decode(ordinal uint64) []int {
	digits := make([]int, len(s.alphabets))
	for i := len(s.alphabets) - 1; i >= 0; i-- {
		radix := uint64(len(s.alphabets[i]))
		digits[i] = int(ordinal % radix)
		ordinal /= radix
	}
	return digits
}

// Iterator returns an iterator positioned at start. A start beyond the end of
// the space yields an already exhausted iterator.
func (s Space) Iterator(start uint64) *Iterator {
	it := &Iterator{space: s}
	if start > s.size {
		start = s.size
	}
	_ = it.Seek(start)
	return it
}
