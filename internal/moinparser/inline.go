package moinparser

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

var (
	// mixed emphasis lookahead, after a run of five ticks
	ibbRE = regexp.MustCompile(`^[^']+'''`)
	ibiRE = regexp.MustCompile(`^[^']+''`)
)

// imageSuffixes are the attachment types transcluded as images.
var imageSuffixes = []string{".gif", ".jpg", ".jpeg", ".png", ".bmp", ".ico", ".svg", ".webp"}

// scan applies the inline rules to the current line, starting at pos.
func (p *parser) scan(pos int) {
	for pos < len(p.line) {
		g := &midGrammar
		if pos == 0 {
			g = &bolGrammar
		}
		m, ok := g.find(p.line, pos)
		if !ok {
			p.text(pos, len(p.line))
			return
		}
		end := p.accept(m)
		if end <= m.start {
			// rejected by context, treat its first character as text
			_, w := utf8.DecodeRuneInString(p.line[m.start:])
			p.text(pos, m.start+w)
			pos = m.start + w
			continue
		}
		p.text(pos, m.start)
		p.handle(m, end)
		pos = end
	}
}

// accept checks the context conditions of a match, returning how far it
// extends, or -1 if it does not apply.
func (p *parser) accept(m match) int {
	switch m.rule {
	case "emph5":
		if rest := p.line[m.end:]; rest == "" || rest[0] == '\'' {
			return m.start + 3
		}

	case "remark":
		if _, on := m.group("remark_on"); on {
			if !p.spaceBefore(m.start) {
				return -1
			}
		} else if !p.spaceAt(m.end) {
			return -1
		}

	case "interwiki":
		if r, ok := p.runeBefore(m.start); ok && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return -1
		}

	case "word":
		if r, ok := p.runeBefore(m.start); ok && (unicode.IsLetter(r) || r == '/') {
			return -1
		}
		if r, ok := p.runeAt(m.end); ok && (unicode.IsLetter(r) || r == '/') {
			return -1
		}

	case "url":
		if r, ok := p.runeBefore(m.start); ok && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '/') {
			return -1
		}
		return m.start + len(m.str("url_target"))

	case "smiley":
		if !p.spaceBefore(m.start) || !p.spaceAt(m.end) {
			return -1
		}

	case "heading":
		if len(m.str("hmarker")) != len(m.str("hend")) {
			return -1
		}

	case "table":
		// a cell separator must not be directly followed by the row end
		rest := strings.TrimPrefix(p.line[m.end:], "|")
		if len(rest) == 1 && isSpace(rest[0]) {
			word := m.text()
			pipes := strings.IndexByte(word, '<')
			switch {
			case pipes >= 0:
				return m.start + pipes
			case len(word) > 2:
				return m.end - 2
			default:
				return -1
			}
		}
	}
	return m.end
}

func (p *parser) runeBefore(i int) (rune, bool) {
	if i <= 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(p.line[:i])
	return r, true
}

func (p *parser) runeAt(i int) (rune, bool) {
	if i >= len(p.line) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p.line[i:])
	return r, true
}

func (p *parser) spaceBefore(i int) bool {
	r, ok := p.runeBefore(i)
	return !ok || unicode.IsSpace(r)
}

func (p *parser) spaceAt(i int) bool {
	r, ok := p.runeAt(i)
	return ok && unicode.IsSpace(r)
}

// handle applies the rule of an accepted match spanning line[m.start:end].
func (p *parser) handle(m match, end int) {
	s, e := m.start, end
	word := p.line[s:e]
	switch m.rule {
	case "emph5":
		if e-s == 5 {
			p.mixedEmph(s, e)
		} else {
			p.emph(s, e)
		}
	case "emph":
		p.emph(s, e)

	case "u":
		p.isU = !p.isU
		p.setDecoration(pagetree.Underline, p.isU, p.src(s, e))
	case "small":
		p.toggle(&p.isSmall, pagetree.Small, strings.TrimSpace(word) == "~-", s, e)
	case "big":
		p.toggle(&p.isBig, pagetree.Big, strings.TrimSpace(word) == "~+", s, e)
	case "strike":
		p.toggle(&p.isStrike, pagetree.Strike, word == "--(", s, e)
	case "remark":
		_, on := m.group("remark_on")
		p.toggle(&p.isRemark, pagetree.Remark, on, s, e)

	case "sup":
		p.addInline(pagetree.Fields{Kind: pagetree.Sup, Content: m.str("sup_text")}, s, e)
	case "sub":
		p.addInline(pagetree.Fields{Kind: pagetree.Sub, Content: m.str("sub_text")}, s, e)
	case "tt":
		p.addInline(pagetree.Fields{Kind: pagetree.Code, Content: m.str("tt_text")}, s, e)
	case "tt_bt":
		p.addInline(pagetree.Fields{Kind: pagetree.Code, Content: m.str("tt_bt_text")}, s, e)

	case "interwiki":
		p.interwiki(m.str("interwiki_wiki"), m.str("interwiki_page"), s, e)
	case "word":
		p.wikiWord(m, s, e)
	case "link":
		p.link(m, s, e)
	case "transclude":
		p.transclude(p.ensureInline(), groupsOf(transcludeRE, word), p.src(s, e))
	case "url":
		p.addInline(pagetree.Fields{Kind: pagetree.URL, Content: word}, s, e)
	case "email":
		id := p.addFrozen(p.ensureInline(), pagetree.Fields{
			Kind: pagetree.Link,
			URL:  "mailto:" + word,
			Link: pagetree.LinkAttr{Class: "mailto"},
		}, p.src(s, e))
		p.addChildText(id, word)
	case "smiley":
		p.addInline(pagetree.Fields{Kind: pagetree.Smiley, Content: word}, s, e)
	case "macro":
		p.addInline(pagetree.Fields{
			Kind:   pagetree.Macro,
			Name:   m.str("macro_name"),
			Args:   m.str("macro_args"),
			Markup: word,
		}, s, e)

	case "heading":
		p.closeInline("paragraph")
		p.undent()
		depth := minInt(len(m.str("hmarker")), 5)
		id := p.addFrozen(p.t.Root(), pagetree.Fields{Kind: pagetree.Heading, Depth: depth}, p.src(s, e))
		p.addChildText(id, strings.TrimSpace(m.str("heading_text")))

	case "parser":
		p.openPre(m)

	case "comment":
		p.closeParagraph()
		if p.inTable {
			p.t.AddSource(p.table, p.src(s, e))
			break
		}
		p.closeInline("paragraph")
		content := strings.TrimSuffix(word, " ")
		p.t.AppendChild(p.t.Root(), p.t.Add(pagetree.Fields{Kind: pagetree.Comment, Content: content}, p.src(s, e)))

	case "ol", "li":
		if len(p.lists) == 0 {
			p.text(s, e)
			break
		}
		p.openItem(pagetree.Listitem, false, p.src(s, e))
	case "li_none":
		if len(p.lists) == 0 {
			p.text(s, e)
			break
		}
		p.openItem(pagetree.Listitem, true, p.src(s, e))
	case "dl":
		p.definition(word, s, e)
	case "indent":
		if n := len(p.lists); n > 0 && p.lists[n-1].item == none {
			p.openItem(pagetree.Listitem, true, p.src(s, e))
		} else {
			p.t.AddSource(p.sink(), p.src(s, e))
		}

	case "tableZ":
		p.tableRowEnd(s, e)
	case "table":
		p.tableCell(word, s, e)

	case "rule":
		if p.inTable {
			p.text(s, e)
			break
		}
		p.closeInline("paragraph")
		p.undent()
		p.t.AppendChild(p.t.Root(), p.t.Add(pagetree.Fields{Kind: pagetree.HorizontalRule}, p.src(s, e)))

	case "entity":
		p.addInline(pagetree.Fields{Kind: pagetree.SGMLEntity, Content: word}, s, e)
	default: // ent
		p.text(s, e)
	}
}

func flip(state int) int {
	if state != 0 {
		return 0
	}
	return 1
}

// emph handles '' and ''' runs.
func (p *parser) emph(s, e int) {
	if e-s == 3 {
		p.isB = flip(p.isB)
		if p.isEm > 0 && p.isB > 0 {
			p.isB = 2
		}
		p.setDecoration(pagetree.Strong, p.isB > 0, p.src(s, e))
		return
	}
	p.isEm = flip(p.isEm)
	if p.isEm > 0 && p.isB > 0 {
		p.isEm = 2
	}
	p.setDecoration(pagetree.Emphasis, p.isEm > 0, p.src(s, e))
}

// mixedEmph handles a run of exactly five ticks, toggling both emphasis and
// strong; the rest of the line decides which one comes first.
func (p *parser) mixedEmph(s, e int) {
	rest := p.line[e:]
	emFirst := true
	switch {
	case ibbRE.MatchString(rest):
		p.isEm, p.isB = flip(p.isEm), flip(p.isB)
		if p.isEm > 0 && p.isB > 0 {
			p.isB = 2
		}
	case ibiRE.MatchString(rest):
		p.isEm, p.isB = flip(p.isEm), flip(p.isB)
		if p.isEm > 0 && p.isB > 0 {
			p.isEm = 2
		}
		emFirst = false
	default:
		emFirst = !(p.isB > p.isEm && p.isEm > 0)
		p.isEm, p.isB = flip(p.isEm), flip(p.isB)
	}
	if emFirst {
		p.setDecoration(pagetree.Emphasis, p.isEm > 0, p.src(s, s+2))
		p.setDecoration(pagetree.Strong, p.isB > 0, p.src(s+2, e))
	} else {
		p.setDecoration(pagetree.Strong, p.isB > 0, p.src(s, s+3))
		p.setDecoration(pagetree.Emphasis, p.isEm > 0, p.src(s+3, e))
	}
}

// toggle handles paired markers whose opening and closing forms differ; an
// opener within an open decoration, or a closer outside one, is text.
func (p *parser) toggle(state *bool, kind pagetree.Kind, opening bool, s, e int) {
	if opening == *state {
		p.text(s, e)
		return
	}
	*state = opening
	p.setDecoration(kind, opening, p.src(s, e))
}

func (p *parser) isLocalWiki(wiki string) bool {
	return wiki == "Self" || (p.site.InterwikiName != "" && wiki == p.site.InterwikiName)
}

func (p *parser) isKnownWiki(wiki string) bool {
	_, ok := p.site.Interwiki[wiki]
	return ok || p.isLocalWiki(wiki)
}

func (p *parser) interwiki(wiki, page string, s, e int) {
	switch {
	case p.isLocalWiki(wiki):
		pg, anchor := splitAnchor(absPageName(p.pageName, page))
		id := p.addFrozen(p.ensureInline(), pagetree.Fields{Kind: pagetree.Pagelink, PageName: pg, Anchor: anchor}, p.src(s, e))
		p.addChildText(id, page)
	case p.isKnownWiki(wiki):
		id := p.addFrozen(p.ensureInline(), pagetree.Fields{Kind: pagetree.Interwikilink, WikiName: wiki, PageName: page}, p.src(s, e))
		p.addChildText(id, page)
	default:
		p.text(s, e)
	}
}

func (p *parser) wikiWord(m match, s, e int) {
	name := m.str("word_name")
	if _, bang := m.group("word_bang"); bang {
		p.addInline(pagetree.Fields{Kind: pagetree.Text, Content: name}, s, e)
		return
	}
	abs := absPageName(p.pageName, name)
	if abs == p.pageName {
		p.text(s, e)
		return
	}
	pg, anchor := splitAnchor(abs)
	id := p.addFrozen(p.ensureInline(), pagetree.Fields{Kind: pagetree.Pagelink, PageName: pg, Anchor: anchor}, p.src(s, e))
	p.addChildText(id, name)
}

// link handles [[target|description|params]] markup.
func (p *parser) link(m match, s, e int) {
	target := m.str("link_target")
	desc := strings.TrimSpace(m.str("link_desc"))
	params := m.str("link_params")
	source := p.src(s, e)
	tg := groupsOf(linkTargetRE, target)

	var (
		f       pagetree.Fields
		defDesc string
	)
	if addr, ok := tg["extern_addr"]; ok {
		attrs, _ := p.parseParams(params, linkAttrNames)
		f = pagetree.Fields{Kind: pagetree.Link, URL: addr, Link: linkAttr(attrs)}
		if f.Link.Class == "" {
			f.Link.Class = tg["extern_scheme"]
		}
		defDesc = addr
	} else if scheme, ok := tg["attach_scheme"]; ok {
		addr := urlUnquote(tg["attach_addr"])
		if scheme == "drawing" {
			p.unsupported("drawing link", source)
			p.text(s, e)
			return
		}
		pg, fn := absoluteAttachment(addr, p.pageName)
		attrs, query := p.parseParams(params, linkAttrNames)
		f = pagetree.Fields{Kind: pagetree.AttachmentLink, PageName: pg, FileName: fn, QueryArgs: query, Link: linkAttr(attrs)}
		defDesc = addr
	} else {
		f, defDesc = p.pageLink(tg["page_name"], params)
	}

	id := p.addFrozen(p.ensureInline(), f, source)
	switch {
	case desc == "":
		p.t.AppendChild(id, p.t.Add(pagetree.Fields{Kind: pagetree.Text, Content: defDesc}, ""))
	case transcludeRE.MatchString(desc):
		p.transclude(id, groupsOf(transcludeRE, desc), desc)
	default:
		p.addChildText(id, desc)
	}
}

// pageLink resolves a link target naming a page, possibly qualified by a
// wiki name.
func (p *parser) pageLink(name, params string) (f pagetree.Fields, defDesc string) {
	attrs, query := p.parseParams(params, linkAttrNames)
	if wiki, page, isIW := strings.Cut(name, ":"); isIW && p.isKnownWiki(wiki) {
		if !p.isLocalWiki(wiki) {
			pg, anchor := splitAnchor(page)
			return pagetree.Fields{
				Kind:      pagetree.Interwikilink,
				WikiName:  wiki,
				PageName:  pg,
				Anchor:    anchor,
				QueryArgs: query,
				Link:      linkAttr(attrs),
			}, page
		}
		name = page
	}
	pg, anchor := splitAnchor(name)
	if pg == "" {
		pg = p.pageName
	}
	return pagetree.Fields{
		Kind:      pagetree.Pagelink,
		PageName:  absPageName(p.pageName, pg),
		Anchor:    anchor,
		QueryArgs: query,
		Link:      linkAttr(attrs),
	}, pg
}

// transclude handles {{target|description|params}} markup, appending the
// resulting node under parent.
func (p *parser) transclude(parent pagetree.ID, g map[string]string, source string) {
	target := urlUnquote(g["transclude_target"])
	desc := strings.TrimSpace(g["transclude_desc"])
	params := g["transclude_params"]
	tg := groupsOf(linkTargetRE, target)

	orDesc := func(def string) string {
		if desc != "" {
			return desc
		}
		return def
	}

	if addr, ok := tg["extern_addr"]; ok {
		attrs, _ := p.parseParams(params, imageAttrNames)
		ia := imageAttr(attrs)
		if ia.Alt == "" {
			ia.Alt = orDesc(addr)
		}
		p.addFrozen(parent, pagetree.Fields{Kind: pagetree.Image, URL: addr, Image: ia}, source)
		return
	}

	if scheme, ok := tg["attach_scheme"]; ok {
		addr := tg["attach_addr"]
		if scheme == "drawing" {
			p.unsupported("drawing transclusion", source)
			p.t.AppendChild(parent, p.t.Add(pagetree.Fields{Kind: pagetree.Text, Content: source}, source))
			return
		}
		pg, fn := absoluteAttachment(addr, p.pageName)
		switch {
		case p.isTextAttachment(fn):
			p.addFrozen(parent, pagetree.Fields{Kind: pagetree.AttachmentInlined, PageName: pg, FileName: fn, LinkText: orDesc(addr)}, source)
		case isImageFile(fn):
			attrs, _ := p.parseParams(params, imageAttrNames)
			ia := imageAttr(attrs)
			if ia.Alt == "" {
				ia.Alt = orDesc(addr)
			}
			p.addFrozen(parent, pagetree.Fields{Kind: pagetree.AttachmentImage, PageName: pg, FileName: fn, Image: ia}, source)
		default:
			attrs, _ := p.parseParams(params, objectAttrNames)
			oa := objectAttr(attrs)
			if oa.Title == "" {
				oa.Title = desc
			}
			id := p.addFrozen(parent, pagetree.Fields{Kind: pagetree.AttachmentTransclude, PageName: pg, FileName: fn, Object: oa}, source)
			p.addChildText(id, orDesc(addr))
		}
		return
	}

	name := tg["page_name"]
	if wiki, _, isIW := strings.Cut(name, ":"); isIW && p.isKnownWiki(wiki) && !p.isLocalWiki(wiki) {
		p.unsupported("interwiki transclusion", source)
		p.t.AppendChild(parent, p.t.Add(pagetree.Fields{Kind: pagetree.Text, Content: source}, source))
		return
	}
	pg, anchor := splitAnchor(name)
	if pg == "" {
		pg = p.pageName
	}
	attrs, query := p.parseParams(params, objectAttrNames)
	oa := objectAttr(attrs)
	if oa.MimeType == "" {
		oa.MimeType = "text/html"
	}
	if oa.Width == "" {
		oa.Width = "100%"
	}
	id := p.addFrozen(parent, pagetree.Fields{
		Kind:      pagetree.Transclude,
		PageName:  absPageName(p.pageName, pg),
		Anchor:    anchor,
		QueryArgs: query,
		Object:    oa,
	}, source)
	p.addChildText(id, orDesc(pg))
}

func (p *parser) isTextAttachment(filename string) bool {
	_, _, ok := p.exts.ForFile(filename)
	return ok
}

func isImageFile(filename string) bool {
	return containsString(imageSuffixes, strings.ToLower(path.Ext(filename)))
}

// definition handles a "term:: " definition list marker.
func (p *parser) definition(word string, s, e int) {
	if len(p.lists) == 0 {
		p.text(s, e)
		return
	}
	p.closeItem()
	top := p.lists[len(p.lists)-1]
	term := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(word), "::"))
	id := p.addFrozen(top.list, pagetree.Fields{Kind: pagetree.DefinitionTerm}, p.src(s, e))
	p.addChildText(id, term)
	p.openItem(pagetree.DefinitionDesc, false, "")
}

// tableCell opens a new cell, and a new row if this is the first cell of
// the line; outside a table the marker is text.
func (p *parser) tableCell(word string, s, e int) {
	if !p.inTable {
		p.text(s, e)
		return
	}
	marker, spec := word, ""
	if i := strings.IndexByte(word, '<'); i >= 0 {
		marker, spec = word[:i], word[i+1:len(word)-1]
	}
	ca := p.parseCellAttrs(spec)

	p.closeInline("table cell")
	if p.tableRowStart || p.row == none {
		p.tableRowStart = false
		p.row = p.t.Add(pagetree.Fields{Kind: pagetree.TableRow, Row: ca.row}, "")
		p.t.AppendChild(p.table, p.row)
		if len(p.t.Children(p.table)) == 1 && ca.table != (pagetree.TableAttr{}) {
			p.t.Node(p.table).Table = ca.table
		}
	}
	if n := len(marker); n > 2 {
		if ca.cell.Align == "" && !strings.Contains(ca.cell.Style, "text-align") {
			ca.cell.Align = "center"
		}
		if ca.cell.ColSpan == 0 {
			ca.cell.ColSpan = n / 2
		}
	}
	p.cell = p.t.Add(pagetree.Fields{Kind: pagetree.TableCell, Cell: ca.cell}, p.src(s, e))
	p.t.AppendChild(p.row, p.cell)
	p.cur, p.inl = p.cell, p.cell
}

func (p *parser) tableRowEnd(s, e int) {
	if !p.inTable || p.row == none {
		p.text(s, e)
		return
	}
	p.closeInline("table cell")
	sink := p.row
	if p.cell != none {
		sink = p.cell
	}
	p.t.AddSource(sink, p.src(s, e))
	p.row, p.cell = none, none
}

// absPageName resolves relative page names: "/Sub" is a child of the
// context page, "../Sibling" one of its parent.
func absPageName(context, name string) string {
	switch {
	case strings.HasPrefix(name, "../"):
		for context != "" && strings.HasPrefix(name, "../") {
			if i := strings.LastIndexByte(context, '/'); i >= 0 {
				context = context[:i]
			} else {
				context = ""
			}
			name = name[3:]
		}
		var parts []string
		for _, part := range []string{context, name} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, "/")
	case strings.HasPrefix(name, "/"):
		if context != "" {
			return context + "/" + name[1:]
		}
		return name[1:]
	}
	return name
}

func splitAnchor(name string) (page, anchor string) {
	if i := strings.LastIndexByte(name, '#'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// absoluteAttachment splits an attachment reference into its page and file
// name; bare file names belong to the current page.
func absoluteAttachment(ref, pageName string) (page, filename string) {
	ref = absPageName(pageName, ref)
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return pageName, ref
}

func urlUnquote(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
