package moinparser

import (
	"regexp"
	"strings"
)

// urlSchemes lists the schemes recognized for bare URLs and external link
// targets.
var urlSchemes = []string{
	"https", "http", "ftp", "file", "mailto", "nntp", "news",
	"ssh", "telnet", "ircs", "irc", "xmpp", "mms", "rtsp",
	"rtmpt", "rtmpe", "rtmps", "rtmp", "webcal", "gopher",
	"sftp", "smb", "nfs", "git", "svn", "wiki",
}

// smileys are all recognized smiley tokens, longest first so that the
// alternation prefers ":-))" over ":-)".
var smileys = []string{
	":-))", "(./)", "{OK}",
	"X-(", "<:(", ":))", "/!\\", "<!>", "(!)", ":-?", ">:>", ":-(", ":-)",
	"B-)", ";-)", "|-)", "{X}", "{i}", "{1}", "{2}", "{3}", "{*}", "{o}",
	":D", ":o", ":(", ":)", "B)", ";)", ":\\", "|)",
}

// punct are the characters that may trail a bare URL without being part of
// it.
const punct = `"'}\]|:,.)?!`

func quoteAll(ss []string) string {
	qs := make([]string, len(ss))
	for i, s := range ss {
		qs[i] = regexp.QuoteMeta(s)
	}
	return strings.Join(qs, "|")
}

var (
	schemesPattern = quoteAll(urlSchemes)

	// transcludePattern is shared by the transclude rule and link descriptions.
	transcludePattern = `\{\{\s*(?P<transclude_target>[^|]+?)\s*` +
		`(?:\|\s*(?P<transclude_desc>[^|]+?)?\s*` +
		`(?:\|\s*(?P<transclude_params>[^|]+?)?\s*)?)?\}\}`

	// anonymous copy, for embedding in the link rule
	transcludeAnon = `\{\{\s*[^|]+?\s*(?:\|\s*[^|]*?\s*(?:\|\s*[^|]*?\s*)?)?\}\}`
)

// inlineRules are the alternatives of the master pattern in match priority
// order; bol rules are only tried at the beginning of a line.
var inlineRules = []struct {
	name    string
	bol     bool
	pattern string
}{
	{name: "emph5", pattern: `'{5}`},
	{name: "emph", pattern: `'{2,3}`},
	{name: "u", pattern: `__`},
	{name: "small", pattern: `~- ?|-~`},
	{name: "big", pattern: `~\+ ?|\+~`},
	{name: "strike", pattern: `--\(|\)--`},
	{name: "remark", pattern: `(?P<remark_on>/\*\s)|(?P<remark_off>\s\*/)`},
	{name: "sup", pattern: `\^(?P<sup_text>.*?)\^`},
	{name: "sub", pattern: `,,(?P<sub_text>.*?),,`},
	{name: "tt", pattern: `\{\{\{(?P<tt_text>.*?)\}\}\}`},
	{name: "tt_bt", pattern: "`(?P<tt_bt_text>.*?)`"},
	{name: "interwiki", pattern: `(?P<interwiki_wiki>[A-Z][a-zA-Z]+):` +
		`(?P<interwiki_page>[^\s'":<|](?:[^\s` + punct + `]|[` + punct + `][^\s` + punct + `])*)`},
	{name: "word", pattern: `(?P<word_bang>!)?(?P<word_name>(?:(?:\.\./)+|/)?` +
		`(?:/?(?:\p{Lu}\p{Ll}+){2,})+(?:#(?P<word_anchor>\S+))?)`},
	{name: "link", pattern: `\[\[\s*(?P<link_target>[^|]+?)\s*` +
		`(?:\|\s*(?P<link_desc>` + transcludeAnon + `|[^|]+?)?\s*` +
		`(?:\|\s*(?P<link_params>[^|]+?)?\s*)?)?\]\]`},
	{name: "transclude", pattern: transcludePattern},
	{name: "url", pattern: `(?P<url_target>(?P<url_scheme>` + schemesPattern + `):\S+?)(?:[` + punct + `]*\s|$)`},
	{name: "email", pattern: `[-\w._+]+@[\w-]+(?:\.[\w-]+)+`},
	{name: "smiley", pattern: quoteAll(smileys)},
	{name: "macro", pattern: `<<(?P<macro_name>\w+)(?:\((?P<macro_args>.*?)\))?>>`},
	{name: "heading", bol: true, pattern: `^(?P<hmarker>=+)\s+(?P<heading_text>.*?)\s+(?P<hend>=+)\s*$`},
	{name: "parser", pattern: `\{\{\{(?P<parser_unique>\{*|\w*)` +
		`(?:(?P<parser_bang>#!)(?P<parser_name>\w*)(?:\s+(?P<parser_args>.+?))?\s*|\s*)$`},
	{name: "comment", bol: true, pattern: `^##.*$`},
	{name: "ol", bol: true, pattern: `^\s+(?:\d+|[aAiI])\.(?:#\d+)?\s`},
	{name: "dl", bol: true, pattern: `^\s+.*?::\s`},
	{name: "li", bol: true, pattern: `^\s+\*\s*`},
	{name: "li_none", bol: true, pattern: `^\s+\.\s*`},
	{name: "indent", bol: true, pattern: `^\s+`},
	{name: "tableZ", pattern: `\|\| $`},
	{name: "table", pattern: `(?:\|\|)+(?:<(?:[^<>][^>]*)?>)?`},
	{name: "rule", pattern: `-{4,}`},
	{name: "entity", pattern: `&(?:[a-zA-Z]+|#\d+|#x[\da-fA-F]+);`},
	{name: "ent", pattern: `[<>&]`},
}

// grammar is a compiled master pattern, along with the group index of each
// rule alternative.
type grammar struct {
	re    *regexp.Regexp
	rules []int // group index per inlineRules entry, 0 if absent
}

func compileGrammar(withBOL bool) grammar {
	var sb strings.Builder
	for _, r := range inlineRules {
		if r.bol && !withBOL {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("(?P<")
		sb.WriteString(r.name)
		sb.WriteByte('>')
		sb.WriteString(r.pattern)
		sb.WriteByte(')')
	}
	g := grammar{re: regexp.MustCompile(sb.String())}
	g.rules = make([]int, len(inlineRules))
	for i, r := range inlineRules {
		if j := g.re.SubexpIndex(r.name); j > 0 {
			g.rules[i] = j
		}
	}
	return g
}

var (
	// bolGrammar is used at the start of a line, midGrammar elsewhere; the
	// latter lacks all start-of-line rules, since the pattern is applied to
	// line remnants where "^" would match spuriously.
	bolGrammar = compileGrammar(true)
	midGrammar = compileGrammar(false)

	linkTargetRE = regexp.MustCompile(`^(?:(?P<extern_addr>(?P<extern_scheme>` + schemesPattern + `):.*)` +
		`|(?P<attach_scheme>attachment|drawing):(?P<attach_addr>.*)` +
		`|(?P<page_name>.*))$`)

	transcludeRE = regexp.MustCompile(`^` + transcludePattern + `$`)

	indentRE = regexp.MustCompile(`^\s*`)
	olRE     = regexp.MustCompile(`^\s+(\d+|[aAiI])\.(?:#(\d+))?\s`)
	dlRE     = regexp.MustCompile(`^\s+.*?::\s`)
	piRE     = regexp.MustCompile(`(?i)^#(?:#|(?:format|redirect|refresh|deprecated|pragma|form|acl|language)\b)`)
	colorRE  = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
)

// match is one master pattern match within a line.
type match struct {
	g     *grammar
	rule  string
	line  string
	start int // absolute offsets within line
	end   int
	loc   []int // submatch indices, relative to base
	base  int
}

func (m match) text() string { return m.line[m.start:m.end] }

// group returns the text of the named subgroup, and whether it participated
// in the match.
func (m match) group(name string) (string, bool) {
	i := m.g.re.SubexpIndex(name)
	if i < 0 || m.loc[2*i] < 0 {
		return "", false
	}
	return m.line[m.base+m.loc[2*i] : m.base+m.loc[2*i+1]], true
}

func (m match) str(name string) string {
	s, _ := m.group(name)
	return s
}

// find runs the grammar on line[pos:], returning the leftmost match.
func (g *grammar) find(line string, pos int) (m match, ok bool) {
	loc := g.re.FindStringSubmatchIndex(line[pos:])
	if loc == nil {
		return m, false
	}
	m = match{g: g, line: line, start: pos + loc[0], end: pos + loc[1], loc: loc, base: pos}
	for i, gi := range g.rules {
		if gi > 0 && loc[2*gi] >= 0 {
			m.rule = inlineRules[i].name
			break
		}
	}
	return m, true
}

// groupsOf extracts all named groups of a whole-string match.
func groupsOf(re *regexp.Regexp, s string) map[string]string {
	sm := re.FindStringSubmatchIndex(s)
	if sm == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && sm[2*i] >= 0 {
			groups[name] = s[sm[2*i]:sm[2*i+1]]
		}
	}
	return groups
}
