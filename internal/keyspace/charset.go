package keyspace

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Charset preset names accepted by Charset.
const (
	CharsetFull     = "full"
	CharsetAlpha    = "alpha"
	CharsetAlphaNum = "alphanum"
	CharsetNum      = "num"
	CharsetCustom   = "custom"
)

const (
	digits      = "0123456789"
	lowercase   = "abcdefghijklmnopqrstuvwxyz"
	uppercase   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	whitespace  = " \t\n\r\x0b\x0c"
)

var presets = map[string]string{
	CharsetFull:     digits + lowercase + uppercase + punctuation + whitespace,
	CharsetAlpha:    lowercase + uppercase,
	CharsetAlphaNum: lowercase + uppercase + digits,
	CharsetNum:      digits,
}

// CharsetNames lists the accepted preset names in display order.
func CharsetNames() []string {
	return []string{CharsetFull, CharsetAlpha, CharsetAlphaNum, CharsetNum, CharsetCustom}
}

// Charset resolves a preset name to its ordered symbols. The custom preset
// uses custom after normalization.
func Charset(name, custom string) ([]rune, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == CharsetCustom {
		symbols := NormalizeCharset(custom)
		if len(symbols) == 0 {
			return nil, fmt.Errorf("keyspace: charset %q requires a non-empty custom charset", CharsetCustom)
		}
		return symbols, nil
	}
	preset, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("keyspace: unknown charset %q (want one of %s)", name, strings.Join(CharsetNames(), ", "))
	}
	return []rune(preset), nil
}

// NormalizeCharset NFC-normalizes value and drops repeated symbols, keeping
// the first occurrence so the caller's ordering still defines precedence.
func NormalizeCharset(value string) []rune {
	normalized := norm.NFC.String(value)
	seen := make(map[rune]struct{}, len(normalized))
	out := make([]rune, 0, len(normalized))
	for _, r := range normalized {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
