package checkpoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformed reports a checkpoint record that cannot be parsed.
var ErrMalformed = errors.New("malformed checkpoint record")

const separator = "|"

// Cursor is a resumable position: the pass length, the literal prefix the
// pass was constrained to, and how many candidates of that pass are retired.
type Cursor struct {
	Length int
	Prefix string
	Offset uint64
}

// String renders the on-disk record form "length|prefix|offset".
func (c Cursor) String() string {
	return strconv.Itoa(c.Length) + separator + c.Prefix + separator + strconv.FormatUint(c.Offset, 10)
}

// IsZero reports whether the cursor is the zero value.
func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

// ParseCursor parses "length|prefix|offset". The first field is the length
// and the last the offset; everything between is the prefix, which may
// itself contain the separator.
func ParseCursor(record string) (Cursor, error) {
	record = strings.TrimSpace(record)
	first := strings.Index(record, separator)
	last := strings.LastIndex(record, separator)
	if first < 0 || first == last {
		return Cursor{}, fmt.Errorf("%w: want length|prefix|offset, got %q", ErrMalformed, record)
	}

	length, err := strconv.Atoi(record[:first])
	if err != nil || length < 1 {
		return Cursor{}, fmt.Errorf("%w: invalid length %q", ErrMalformed, record[:first])
	}
	offset, err := strconv.ParseUint(record[last+1:], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: invalid offset %q", ErrMalformed, record[last+1:])
	}
	prefix := record[first+1 : last]
	if !utf8.ValidString(prefix) {
		return Cursor{}, fmt.Errorf("%w: prefix is not valid UTF-8", ErrMalformed)
	}
	if utf8.RuneCountInString(prefix) > length {
		return Cursor{}, fmt.Errorf("%w: prefix %q longer than length %d", ErrMalformed, prefix, length)
	}
	return Cursor{Length: length, Prefix: prefix, Offset: offset}, nil
}
