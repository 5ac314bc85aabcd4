package mdutil

import (
	"bufio"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

func isAttrSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// ScanAttrs implements a bufio.SplitFunc that scans attribute tokens, like
// those of `key="value", other=1` parameter lists. Tokens are separated by
// space or commas; a quoted string is a single token (quotes retained), and
// each "=" is a token of its own.
func ScanAttrs(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading separators.
	start := 0
	var r rune
	for width := 0; start < len(data); start += width {
		r, width = utf8.DecodeRune(data[start:])
		if !isAttrSep(r) {
			break
		}
	}
	if start >= len(data) {
		return start, nil, nil
	}

	switch r {
	case '=':
		return start + 1, data[start : start+1], nil

	case '"', '\'':
		// Scan until end quote, skipping escaped quotes.
		q := r
		esc := false
		for width, i := 0, start+1; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			if r == '\\' && !esc {
				esc = true
			} else if !esc && r == q {
				return i + width, data[start : i+width], nil
			} else {
				esc = false
			}
		}

	default:
		// Scan until separator, equal sign, or quote.
		for width, i := 0, start; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			if isAttrSep(r) || r == '=' || r == '"' || r == '\'' {
				return i, data[start:i], nil
			}
		}
	}

	// If we're at EOF, we have a final, non-empty, non-terminated token. Return it.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	// Request more data.
	return start, nil, nil
}

// SplitAttrs returns all ScanAttrs tokens of s.
func SplitAttrs(s string) []string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Split(ScanAttrs)
	var tokens []string
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	return tokens
}

// IsQuoted returns true if arg is wrapped in matching single or double quotes.
func IsQuoted(arg string) bool {
	return len(arg) >= 2 && (arg[0] == '"' || arg[0] == '\'') && arg[len(arg)-1] == arg[0]
}

// UnquoteArg strips the quotes from a quoted token, resolving backslash
// escapes; unquoted tokens are returned as is.
func UnquoteArg(arg string) string {
	if len(arg) < 2 || (arg[0] != '"' && arg[0] != '\'') {
		return arg
	}
	q := arg[0]
	arg = arg[1:]
	var buf strings.Builder
	buf.Grow(len(arg))
	for len(arg) > 0 && arg[0] != q {
		r, _, tail, err := strconv.UnquoteChar(arg, q)
		if err != nil {
			buf.WriteString(arg)
			break
		}
		buf.WriteRune(r)
		arg = tail
	}
	return buf.String()
}
