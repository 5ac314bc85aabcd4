package mdformat

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	orderedLookalikeRE = regexp.MustCompile(`^(\d+)([.)])(\s|$)`)
	bulletLookalikeRE  = regexp.MustCompile(`^[-+](\s|$)`)
	ruleLookalikeRE    = regexp.MustCompile(`^(?:-+|=+)\s*$`)
	emojiLookalikeRE   = regexp.MustCompile(`:(\w+):`)
	entityLookalikeRE  = regexp.MustCompile(`&(#?\w+);`)
)

// markupEscaper escapes characters that are special anywhere in Markdown
// body text.
var markupEscaper = strings.NewReplacer(
	"[", `\[`,
	"]", `\]`,
	"{", `\{`,
	"}", `\}`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"~", `\~`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"#", `\#`,
)

var targetEscaper = strings.NewReplacer(
	`\`, `\\`,
	"(", `\(`,
	")", `\)`,
	`"`, `\"`,
	" ", "%20",
	"<", "%3C",
	">", "%3E",
)

// escapeOptions describe where escaped text lands.
type escapeOptions struct {
	lineStart  bool // text starts at the beginning of an output line
	inTable    bool
	allowEmoji bool
}

// escapeText escapes s so that Markdown renders it back as literal text.
func escapeText(s string, opts escapeOptions) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i < len(lines)-1 {
			// two trailing spaces would make a hard line break
			line = strings.TrimRight(line, " \t")
		}
		if opts.inTable {
			line = strings.ReplaceAll(line, "-", `\-`)
		} else if i > 0 || opts.lineStart {
			line = escapeLineStart(line)
		}
		line = strings.ReplaceAll(line, "![", `\![`)
		if !opts.allowEmoji {
			line = emojiLookalikeRE.ReplaceAllString(line, `\:$1\:`)
		}
		line = entityLookalikeRE.ReplaceAllString(line, `\&$1;`)
		lines[i] = markupEscaper.Replace(line)
	}
	return strings.Join(lines, "\n")
}

// escapeLineStart neutralizes block markers at the start of a line.
func escapeLineStart(line string) string {
	line = strings.TrimLeft(line, " \t")
	switch {
	case ruleLookalikeRE.MatchString(line):
		var sb strings.Builder
		for _, r := range line {
			if r == '-' || r == '=' {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
		return sb.String()
	case orderedLookalikeRE.MatchString(line):
		return orderedLookalikeRE.ReplaceAllString(line, `$1\$2$3`)
	case bulletLookalikeRE.MatchString(line):
		return `\` + line
	}
	return line
}

// asciiPunct are the characters that CommonMark allows to be backslash
// escaped.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// escapePunct backslash escapes every ASCII punctuation character.
func escapePunct(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(asciiPunct, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escapeTarget escapes a link destination.
func escapeTarget(url string) string { return targetEscaper.Replace(url) }

// codeSpan returns content as inline code.
func codeSpan(content string) string {
	if content == "" {
		return ""
	}
	delim := strings.Repeat("`", fenceWidth(content, 1))
	pad := ""
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
		pad = " "
	}
	return delim + pad + content + pad + delim
}

// splitSpace splits s into leading whitespace, core, and trailing
// whitespace.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }
