package mdformat

import (
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// markType selects the Markdown block structure a mark opens.
type markType int

const (
	noMark markType = iota // 0 value should never be seen
	headingMark
	rulerMark
	fenceMark
	itemMark
	definitionMark
)

// mark is the opening marker of a Markdown block.
type mark struct {
	Type markType

	// Delim is the marker byte:
	// - heading: '#'
	// - ruler: '-', '_', or '*'
	// - fence: '`' or '~'
	// - item: '*', '-', '.', or ')'
	// - definition: ':'
	Delim byte

	// Width is:
	// - heading: the header level
	// - ruler: how many rule bytes
	// - fence: how many fence bytes
	// - item: the ordinal of an ordered item
	Width int
}

// String returns the marker text, followed by any space needed before
// content.
func (m mark) String() string {
	var sb strings.Builder
	if _, err := m.writeMark(&sb); err != nil {
		sb.Reset()
		sb.WriteString("!ERROR(")
		sb.WriteString(err.Error())
		sb.WriteString(")")
	}
	return sb.String()
}

// indent returns the whitespace that aligns continuation lines under
// content following the mark.
func (m mark) indent() string {
	return strings.Repeat(" ", len(m.String()))
}

func (m mark) writeMark(into io.StringWriter) (n int64, err error) {
	writeString := func(s string) {
		if err == nil {
			var k int
			k, err = into.WriteString(s)
			n += int64(k)
		}
	}

	switch m.Type {
	case headingMark:
		if m.Delim != '#' {
			return 0, errors.Newf("invalid heading delim %q", m.Delim)
		}
		writeString(strings.Repeat("#", m.Width))
		writeString(" ")

	case rulerMark:
		switch d := m.Delim; d {
		case '-', '_', '*':
			writeString(strings.Repeat(string(d), m.Width))
		default:
			return 0, errors.Newf("invalid ruler delim %q", d)
		}

	case fenceMark:
		switch d := m.Delim; d {
		case '`', '~':
			writeString(strings.Repeat(string(d), m.Width))
		default:
			return 0, errors.Newf("invalid fence delim %q", d)
		}

	case itemMark:
		switch d := m.Delim; d {
		case '-', '*':
			writeString(string(d))
			writeString(" ")
		case '.', ')':
			writeString(strconv.Itoa(m.Width))
			writeString(string(d))
			writeString(" ")
		default:
			return 0, errors.Newf("invalid item delim %q", d)
		}

	case definitionMark:
		if m.Delim != ':' {
			return 0, errors.Newf("invalid definition delim %q", m.Delim)
		}
		writeString(":   ")

	default:
		return 0, errors.Newf("invalid mark type %v", m.Type)
	}
	return n, err
}

// fenceWidth returns how many delimiters are needed to fence content: one
// more than its longest backtick run, and at least min.
func fenceWidth(content string, min int) int {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			if run++; run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest+1 > min {
		return longest + 1
	}
	return min
}
