/* Package moinparser parses MoinMoin 1.x wiki markup into a pagetree.

Parsing is line oriented: each line first updates block state (lists,
tables, preformatted blocks), then a master pattern of inline rules is
repeatedly applied to it. Every byte of input ends up in the source text of
some node, so the root's source text always equals the parsed text.
*/
package moinparser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// none is shorthand for pagetree.None.
const none = pagetree.None

// tabSize is the tab stop width used to expand tabs.
const tabSize = 8

// SiteConfig carries site wide settings consulted by the parser.
type SiteConfig struct {
	// InterwikiName is this wiki's own interwiki name; links qualified by it
	// (or by "Self") are local page links.
	InterwikiName string

	// Interwiki maps known wiki names to their URL prefix; prefixes of other
	// names are not interwiki links.
	Interwiki map[string]string

	// Extensions resolves preformatted block parsers, DefaultRegistry if nil.
	Extensions *Registry

	// Logger receives warnings about unsupported markup, and info about
	// dropped attributes. Nil disables logging.
	Logger *zap.SugaredLogger
}

// Parse parses the MoinMoin text of the named page.
//
// In lax mode malformed markup is recovered from and Parse never fails. In
// strict mode the first structural problem is returned as an error marked
// with ErrStructure.
func Parse(text, pageName string, site *SiteConfig, strict bool) (*pagetree.Tree, error) {
	p := newParser(pageName, site, strict)
	p.parse(text)
	if p.err != nil {
		return nil, p.err
	}
	return p.t, nil
}

type preState uint8

const (
	preNone preState = iota
	preSearch
	preFound
)

type listLevel struct {
	indent int
	kind   pagetree.Kind
	list   pagetree.ID
	item   pagetree.ID // open Listitem or DefinitionDesc
}

type parser struct {
	site     SiteConfig
	exts     *Registry
	log      *zap.SugaredLogger
	pageName string
	strict   bool
	err      error

	t *pagetree.Tree

	lineno int
	raw    string // current input line, without its newline
	eol    string // newline that ended the current line, if any
	line   string // tab expanded raw, with a trailing space appended
	rawOff []int  // line offset to raw offset map, nil if identity

	// cur is the innermost open inline node, within the inline container inl
	// (a paragraph, list item, or table cell); both are none when no inline
	// content is open.
	cur, inl pagetree.ID
	para     pagetree.ID

	lists []listLevel

	inTable       bool
	tableRowStart bool
	table         pagetree.ID
	row           pagetree.ID
	cell          pagetree.ID

	inPre     preState
	preUnique string
	preNode   pagetree.ID
	preName   string
	preArgs   string
	preLines  []string

	// emphasis states are 0 (off), 1 (on), or 2 (on, opened after the other)
	isEm, isB                               int
	isU, isStrike, isBig, isSmall, isRemark bool
}

func newParser(pageName string, site *SiteConfig, strict bool) *parser {
	p := &parser{
		pageName: pageName,
		strict:   strict,
		t:        pagetree.New(),
		cur:      none,
		inl:      none,
		para:     none,
		table:    none,
		row:      none,
		cell:     none,
		preNode:  none,
	}
	if site != nil {
		p.site = *site
	}
	p.exts = p.site.Extensions
	if p.exts == nil {
		p.exts = DefaultRegistry()
	}
	p.log = p.site.Logger
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	return p
}

func (p *parser) parse(text string) {
	inPI := true
	for len(text) > 0 {
		var raw, eol string
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			raw, eol, text = text[:i], "\n", text[i+1:]
			if strings.HasSuffix(raw, "\r") {
				raw, eol = raw[:len(raw)-1], "\r\n"
			}
		} else {
			raw, text = text, ""
		}
		p.lineno++
		p.setLine(raw, eol)

		if inPI {
			if piRE.MatchString(raw) {
				p.t.AddSource(p.t.Root(), raw+eol)
				continue
			}
			inPI = false
		}
		p.processLine()
	}
	p.finish()
}

func (p *parser) setLine(raw, eol string) {
	p.raw, p.eol = raw, eol
	if strings.IndexByte(raw, '\t') < 0 {
		p.line, p.rawOff = raw+" ", nil
		return
	}
	var sb strings.Builder
	off := make([]int, 0, len(raw)+tabSize)
	col := 0
	for i, r := range raw {
		if r != '\t' {
			n := utf8.RuneLen(r)
			for j := 0; j < n; j++ {
				off = append(off, i+j)
			}
			sb.WriteRune(r)
			col++
			continue
		}
		w := tabSize - col%tabSize
		// the first expanded space stands for the tab, the rest for nothing
		off = append(off, i)
		for j := 1; j < w; j++ {
			off = append(off, i+1)
		}
		sb.WriteString(strings.Repeat(" ", w))
		col += w
	}
	off = append(off, len(raw), len(raw))
	sb.WriteByte(' ')
	p.line, p.rawOff = sb.String(), off
}

// src returns the input text corresponding to line[s:e]; the appended
// trailing space stands for the line's newline.
func (p *parser) src(s, e int) string {
	if s >= e {
		return ""
	}
	n := len(p.line) - 1
	rs, re := p.rawPos(minInt(s, n)), p.rawPos(minInt(e, n))
	if e > n {
		return p.raw[rs:re] + p.eol
	}
	return p.raw[rs:re]
}

func (p *parser) rawPos(i int) int {
	if p.rawOff == nil {
		return i
	}
	return p.rawOff[i]
}

// fail records a structural error under strict mode.
func (p *parser) fail(reason string) {
	if p.strict && p.err == nil {
		p.err = structuralError(p.lineno, p.raw, reason)
	}
}

func (p *parser) unsupported(what, markup string) {
	p.log.Warnw("unsupported markup",
		"page", p.pageName,
		"line", p.lineno,
		"what", what,
		"markup", markup)
}

func (p *parser) processLine() {
	pos := 0
	if p.inPre != preNone {
		if pos = p.preLine(); pos < 0 {
			return
		}
	} else if pos = p.blockLine(); pos < 0 {
		return
	}
	p.scan(pos)
}

// blockLine updates block state for a new line; it returns -1 if the line
// needs no inline scanning.
func (p *parser) blockLine() int {
	body := p.line[:len(p.line)-1]
	if strings.TrimSpace(body) == "" {
		if p.inTable {
			p.closeTable()
		}
		p.closeParagraph()
		p.t.AddSource(p.sink(), p.src(0, len(p.line)))
		return -1
	}

	p.tableRowStart = true
	indent := len(indentRE.FindString(body))
	kind, numType, numStart := pagetree.BulletList, "", 0
	if indent > 0 {
		if sm := olRE.FindStringSubmatch(p.line); sm != nil {
			kind, numType = pagetree.NumberList, sm[1]
			if isDigit(numType[0]) {
				numType = "1"
			}
			if sm[2] != "" {
				numStart, _ = strconv.Atoi(sm[2])
			}
		} else if dlRE.MatchString(p.line) {
			kind = pagetree.DefinitionList
		}
	}
	p.indentTo(indent, kind, numType, numStart)

	isTableLine := strings.HasPrefix(p.line[indent:], "||") &&
		strings.HasSuffix(p.line, "|| ") &&
		len(p.line) >= 5+indent
	if !p.inTable && isTableLine {
		p.closeInline("paragraph")
		parent := p.blockParent()
		p.closeInline("list item")
		p.table = p.t.Add(pagetree.Fields{Kind: pagetree.Table}, "")
		p.t.AppendChild(parent, p.table)
		p.inTable = true
	} else if p.inTable && !isTableLine && !strings.HasPrefix(p.line, "##") {
		p.closeTable()
	}
	return 0
}

func (p *parser) finish() {
	if p.inPre != preNone {
		p.closePre()
	}
	if p.inTable {
		p.closeTable()
	}
	p.closeInline("page")
	for len(p.lists) > 0 {
		p.popList()
	}
}

// preformatted blocks

// openPre starts a preformatted block from a "{{{" match that runs through
// the end of the line.
func (p *parser) openPre(m match) {
	unique := m.str("parser_unique")
	if unique != "" && strings.Trim(unique, "{") == "" {
		unique = strings.Repeat("}", len(unique))
	}
	p.preUnique = unique
	p.preLines = nil
	p.preName, p.preArgs = "", ""
	p.inPre = preSearch
	if _, bang := m.group("parser_bang"); bang {
		p.inPre = preFound
		p.preName = m.str("parser_name")
		p.preArgs = m.str("parser_args")
		if p.preName == "" {
			p.preName = "text"
		}
	}

	var parent pagetree.ID
	if p.inTable && p.cell != none {
		parent = p.cell
		p.closeDecorations("table cell")
	} else {
		p.closeInline("paragraph")
		parent = p.blockParent()
		p.closeInline("list item")
	}
	p.preNode = p.t.Add(pagetree.Fields{
		Kind: pagetree.ParsedText,
		Name: p.preName,
		Args: p.preArgs,
	}, p.src(m.start, len(p.line)))
	p.t.AppendChild(parent, p.preNode)
}

// preLine feeds the current line to the open preformatted block; it returns
// the offset from which to continue normal inline scanning, or -1 if the
// whole line was consumed.
func (p *parser) preLine() int {
	body := p.line[:len(p.line)-1]
	term := p.preUnique + "}}}"
	i := strings.Index(body, term)
	if i < 0 {
		p.preContent(body)
		p.t.AddSource(p.preNode, p.src(0, len(p.line)))
		return -1
	}

	if before := body[:i]; strings.TrimSpace(before) != "" {
		p.preContent(before)
	}
	end := i + len(term)
	if strings.TrimSpace(body[end:]) == "" {
		end = len(p.line)
	}
	p.t.AddSource(p.preNode, p.src(0, end))
	p.closePre()
	if end >= len(p.line) {
		return -1
	}
	return end
}

func (p *parser) preContent(s string) {
	switch p.inPre {
	case preSearch:
		ts := strings.TrimSpace(s)
		if ts == "" {
			return
		}
		p.inPre = preFound
		if strings.HasPrefix(ts, "#!") {
			name, args, _ := strings.Cut(ts[2:], " ")
			p.preName, p.preArgs = name, strings.TrimSpace(args)
			if p.preName == "" {
				p.preName = "text"
			}
			return
		}
		p.preName = "text"
		p.preLines = append(p.preLines, s)
	case preFound:
		p.preLines = append(p.preLines, s)
	}
}

func (p *parser) closePre() {
	if p.preName == "" {
		p.preName = "text"
	}
	content := strings.Join(p.preLines, "\n")
	n := p.t.Node(p.preNode)
	n.Name, n.Args, n.Content = p.preName, p.preArgs, content

	ext, ok := p.exts.Lookup(p.preName)
	if !ok {
		p.unsupported("parser "+p.preName, "#!"+p.preName)
		ext = p.exts.ForName(p.preName)
	}
	kid, err := ext.Parse(p.t, content, p.preName, p.preArgs)
	if err != nil {
		p.log.Warnw("preformatted block parser failed, using plain text",
			"page", p.pageName,
			"line", p.lineno,
			"parser", p.preName,
			"error", err)
		kid, _ = TextExtension{}.Parse(p.t, content, p.preName, p.preArgs)
	}
	p.t.AttachChild(p.preNode, kid)
	p.t.Freeze(p.preNode)

	p.inPre = preNone
	p.preNode = none
	p.preLines = nil
	p.preUnique, p.preName, p.preArgs = "", "", ""
}

// block structure

func (p *parser) indentLevel() int {
	if n := len(p.lists); n > 0 {
		return p.lists[n-1].indent
	}
	return 0
}

// indentTo closes and opens lists so that the innermost list matches the
// given indentation.
func (p *parser) indentTo(level int, kind pagetree.Kind, numType string, numStart int) {
	if p.indentLevel() != level && p.inTable {
		p.closeTable()
	}

	popped := false
	for len(p.lists) > 0 && p.indentLevel() > level {
		p.popList()
		popped = true
	}

	if p.indentLevel() < level {
		if popped {
			p.fail("dedent to an unknown indentation level")
		}
		p.closeInline("paragraph")
		parent := p.blockParent()
		p.closeInline("list item")
		f := pagetree.Fields{Kind: kind}
		if kind == pagetree.NumberList {
			f.NumType, f.NumStart = numType, numStart
		}
		list := p.t.Add(f, "")
		p.t.AppendChild(parent, list)
		p.lists = append(p.lists, listLevel{indent: level, kind: kind, list: list, item: none})
	}
}

func (p *parser) popList() {
	p.closeItem()
	p.lists = p.lists[:len(p.lists)-1]
}

// undent closes all open lists.
func (p *parser) undent() {
	for len(p.lists) > 0 {
		p.popList()
	}
}

// blockParent returns the node that receives block content: the innermost
// list item, opening a marker-less one if necessary, or else the root.
func (p *parser) blockParent() pagetree.ID {
	n := len(p.lists)
	if n == 0 {
		return p.t.Root()
	}
	top := &p.lists[n-1]
	if top.item == none {
		kind := pagetree.Listitem
		if top.kind == pagetree.DefinitionList {
			kind = pagetree.DefinitionDesc
		}
		p.openItem(kind, kind == pagetree.Listitem, "")
	}
	return top.item
}

// openItem closes any open item of the innermost list, and opens a new one.
func (p *parser) openItem(kind pagetree.Kind, noMarker bool, source string) pagetree.ID {
	p.closeItem()
	top := &p.lists[len(p.lists)-1]
	id := p.t.Add(pagetree.Fields{Kind: kind, NoMarker: noMarker}, source)
	p.t.AppendChild(top.list, id)
	top.item = id
	p.cur, p.inl = id, id
	return id
}

func (p *parser) closeItem() {
	p.closeInline("list item")
	if n := len(p.lists); n > 0 {
		p.lists[n-1].item = none
	}
}

func (p *parser) closeTable() {
	p.closeInline("table cell")
	p.inTable = false
	p.table, p.row, p.cell = none, none, none
}

func (p *parser) closeParagraph() {
	if p.para != none {
		p.closeInline("paragraph")
		p.para = none
	}
}

// inline structure

// ensureInline returns the current inline insertion point, opening a
// container for it if none is open.
func (p *parser) ensureInline() pagetree.ID {
	if p.cur != none {
		return p.cur
	}
	var c pagetree.ID
	switch {
	case p.inTable && p.cell != none:
		c = p.cell
	case len(p.lists) > 0:
		c = p.blockParent()
	default:
		p.para = p.t.Add(pagetree.Fields{Kind: pagetree.Paragraph}, "")
		p.t.AppendChild(p.t.Root(), p.para)
		c = p.para
	}
	p.cur, p.inl = c, c
	return c
}

// closeDecorations closes all decorations open within the inline container.
func (p *parser) closeDecorations(where string) {
	for p.cur != p.inl && p.cur != none {
		p.fail("unclosed " + p.t.Kind(p.cur).String() + " at end of " + where)
		p.cur = p.t.Parent(p.cur)
	}
	p.isEm, p.isB = 0, 0
	p.isU, p.isStrike, p.isBig, p.isSmall, p.isRemark = false, false, false, false, false
}

// closeInline closes the open inline container, if any.
func (p *parser) closeInline(where string) {
	if p.cur == none {
		return
	}
	p.closeDecorations(where)
	if p.inl == p.para {
		p.para = none
	}
	p.cur, p.inl = none, none
}

// sink returns the node that receives source text not represented by any
// node of its own.
func (p *parser) sink() pagetree.ID {
	switch {
	case p.cur != none:
		return p.cur
	case p.inTable:
		return p.table
	case len(p.lists) > 0:
		top := p.lists[len(p.lists)-1]
		if top.item != none {
			return top.item
		}
		return top.list
	}
	return p.t.Root()
}

func (p *parser) openDecoration(kind pagetree.Kind, source string) {
	parent := p.ensureInline()
	id := p.t.Add(pagetree.Fields{Kind: kind}, source)
	p.t.AppendChild(parent, id)
	p.cur = id
}

// closeDecoration closes the innermost open decoration of the given kind;
// decorations opened within it are closed and reopened after it.
func (p *parser) closeDecoration(kind pagetree.Kind, source string) {
	var within []pagetree.Kind
	for id := p.cur; id != p.inl && id != none; id = p.t.Parent(id) {
		if k := p.t.Kind(id); k != kind {
			within = append(within, k)
			continue
		}
		if len(within) > 0 {
			p.fail("misnested " + kind.String())
		}
		p.t.AddSource(id, source)
		p.cur = p.t.Parent(id)
		for i := len(within) - 1; i >= 0; i-- {
			p.openDecoration(within[i], "")
		}
		return
	}
	p.addText(source, source)
}

func (p *parser) setDecoration(kind pagetree.Kind, on bool, source string) {
	if on {
		p.openDecoration(kind, source)
	} else {
		p.closeDecoration(kind, source)
	}
}

// text emits line[s:e] as literal text.
func (p *parser) text(s, e int) {
	if s >= e {
		return
	}
	content := p.line[s:e]
	if p.cur == none && strings.TrimSpace(content) == "" {
		p.t.AddSource(p.sink(), p.src(s, e))
		return
	}
	p.addText(content, p.src(s, e))
}

func (p *parser) addText(content, source string) {
	parent := p.ensureInline()
	p.t.AppendChild(parent, p.t.Add(pagetree.Fields{Kind: pagetree.Text, Content: content}, source))
}

// addInline appends a complete inline node, whose source is line[s:e].
func (p *parser) addInline(f pagetree.Fields, s, e int) pagetree.ID {
	parent := p.ensureInline()
	id := p.t.Add(f, p.src(s, e))
	p.t.AppendChild(parent, id)
	return id
}

// addFrozen appends a node under parent along with its whole source, then
// freezes it, so that children added later do not repeat their source text
// in its ancestors.
func (p *parser) addFrozen(parent pagetree.ID, f pagetree.Fields, source string) pagetree.ID {
	id := p.t.Add(f, source)
	p.t.AppendChild(parent, id)
	p.t.Freeze(id)
	return id
}

func (p *parser) addChildText(parent pagetree.ID, content string) {
	p.t.AppendChild(parent, p.t.Add(pagetree.Fields{Kind: pagetree.Text, Content: content}, content))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
