package moinsite

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFileName marks page directory names that do not decode to a
// page name.
var ErrInvalidFileName = errors.New("invalid wiki file name")

// DecodeName returns the page name encoded by a MoinMoin page directory
// name, where each "(hex)" group stands for the UTF-8 bytes it spells out,
// e.g. "Foo(2f)Bar(20)Baz" for "Foo/Bar Baz". Names with an empty, "." or
// ".." segment are rejected, since page names become content paths.
func DecodeName(fileName string) (string, error) {
	var sb strings.Builder
	for s := fileName; s != ""; {
		i := strings.IndexByte(s, '(')
		if i < 0 {
			sb.WriteString(s)
			break
		}
		sb.WriteString(s[:i])
		j := strings.IndexByte(s[i:], ')')
		if j < 0 {
			return "", errors.Mark(errors.Newf("unterminated group in %q", fileName), ErrInvalidFileName)
		}
		b, err := hex.DecodeString(s[i+1 : i+j])
		if err != nil || len(b) == 0 {
			return "", errors.Mark(errors.Newf("invalid hex group %q in %q", s[i:i+j+1], fileName), ErrInvalidFileName)
		}
		sb.Write(b)
		s = s[i+j+1:]
	}
	name := sb.String()
	if !utf8.ValidString(name) {
		return "", errors.Mark(errors.Newf("%q does not decode to utf-8", fileName), ErrInvalidFileName)
	}
	name = norm.NFC.String(name)
	for _, part := range strings.Split(name, "/") {
		switch part {
		case "", ".", "..":
			return "", errors.Mark(errors.Newf("%q decodes to %q, which has an empty or relative path segment", fileName, name), ErrInvalidFileName)
		}
	}
	return name, nil
}

// EncodeName returns the MoinMoin directory name of a page: runs of bytes
// other than ASCII letters, digits and underscore become one "(hex)" group.
func EncodeName(pageName string) string {
	var sb strings.Builder
	name := norm.NFC.String(pageName)
	for i := 0; i < len(name); {
		if isSafe(name[i]) {
			sb.WriteByte(name[i])
			i++
			continue
		}
		j := i
		for j < len(name) && !isSafe(name[j]) {
			j++
		}
		sb.WriteByte('(')
		sb.WriteString(hex.EncodeToString([]byte(name[i:j])))
		sb.WriteByte(')')
		i = j
	}
	return sb.String()
}

func isSafe(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_'
}
