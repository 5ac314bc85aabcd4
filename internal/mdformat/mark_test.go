package mdformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	for _, tc := range []struct {
		mark mark
		out  string
	}{
		{mark{Type: headingMark, Delim: '#', Width: 3}, "### "},
		{mark{Type: rulerMark, Delim: '-', Width: 4}, "----"},
		{mark{Type: fenceMark, Delim: '`', Width: 3}, "```"},
		{mark{Type: itemMark, Delim: '*'}, "* "},
		{mark{Type: itemMark, Delim: '.', Width: 12}, "12. "},
		{mark{Type: definitionMark, Delim: ':'}, ":   "},
		{mark{Type: headingMark, Delim: '='}, `!ERROR(invalid heading delim '=')`},
		{mark{}, "!ERROR(invalid mark type 0)"},
	} {
		assert.Equal(t, tc.out, tc.mark.String())
	}
	assert.Equal(t, "    ", mark{Type: itemMark, Delim: '.', Width: 10}.indent())
}

func TestFenceWidth(t *testing.T) {
	assert.Equal(t, 3, fenceWidth("plain", 3))
	assert.Equal(t, 4, fenceWidth("a ``` b", 3))
	assert.Equal(t, 2, fenceWidth("a`b", 1))
}
