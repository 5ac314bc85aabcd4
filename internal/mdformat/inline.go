package mdformat

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/jcorbin/moin2hugo/internal/moinparser"
	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

var urlEscaper = strings.NewReplacer("<", "%3C", ">", "%3E")

// wrap renders the children of id between emphasis delimiters. Surrounding
// whitespace moves outside the delimiters, and a space is added where
// punctuation would otherwise stop the delimiter from flanking.
func (f *formatter) wrap(id pagetree.ID, delim string) string {
	lead, core, trail := splitSpace(f.children(id))
	if core == "" {
		return lead + trail
	}
	var sb strings.Builder
	if lead != "" {
		sb.WriteByte(' ')
	} else if r, _ := utf8.DecodeRuneInString(core); !isWordRune(r) {
		if p, ok := f.prevRune(id); ok && isWordRune(p) {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(delim)
	sb.WriteString(core)
	sb.WriteString(delim)
	if trail != "" {
		sb.WriteByte(' ')
	} else if r, _ := utf8.DecodeLastRuneInString(core); !isWordRune(r) {
		if n, ok := f.nextRune(id); ok && isWordRune(n) {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func startTag(tag string, attrs []html.Attribute) string {
	return html.Token{Type: html.StartTagToken, Data: tag, Attr: attrs}.String()
}

func endTag(tag string) string {
	return html.Token{Type: html.EndTagToken, Data: tag}.String()
}

// attrList builds HTML attributes from key value pairs, skipping empty
// values.
func attrList(kvs ...string) []html.Attribute {
	var attrs []html.Attribute
	for i := 0; i+1 < len(kvs); i += 2 {
		if kvs[i+1] != "" {
			attrs = append(attrs, html.Attribute{Key: kvs[i], Val: kvs[i+1]})
		}
	}
	return attrs
}

// innerHTML renders the children of id for use inside an HTML element. Only
// plain text can be expressed there; anything richer is passed through as
// formatted Markdown, which Hugo may not render.
func (f *formatter) innerHTML(id pagetree.ID) string {
	var sb strings.Builder
	for _, kid := range f.t.Descendants(id) {
		n := f.t.Node(kid)
		if n.Kind != pagetree.Text {
			f.warn(id, "markup inside raw html", n.Kind.String())
			return f.children(id)
		}
		sb.WriteString(n.Content)
	}
	return html.EscapeString(sb.String())
}

// rawElement renders the children of id as an HTML element.
func (f *formatter) rawElement(id pagetree.ID, tag string, attrs []html.Attribute) string {
	if !f.cfg.AllowRawHTML {
		return f.escapedSource(id)
	}
	return startTag(tag, attrs) + f.innerHTML(id) + endTag(tag)
}

// rawContent renders the content of id as an HTML element.
func (f *formatter) rawContent(id pagetree.ID, tag string) string {
	if !f.cfg.AllowRawHTML {
		return f.escapedSource(id)
	}
	return startTag(tag, nil) + html.EscapeString(f.t.Node(id).Content) + endTag(tag)
}

func (f *formatter) code(id pagetree.ID) string {
	s := codeSpan(f.t.Node(id).Content)
	if f.inTable(id) {
		s = strings.ReplaceAll(s, "|", `\|`)
	}
	return s
}

func (f *formatter) smiley(id pagetree.ID) string {
	content := f.t.Node(id).Content
	if f.cfg.AllowEmoji {
		if emoji, ok := smileyEmoji[content]; ok {
			return emoji
		}
	}
	s := escapeText(content, f.escapeOpts(id))
	if s != "" && s[0] != '\\' && strings.IndexByte(asciiPunct, s[0]) >= 0 {
		s = `\` + s
	}
	return s
}

// cellLineBreak breaks lines within a table cell, where Markdown has no hard
// line break of its own.
const cellLineBreak = "<br />"

func (f *formatter) macro(id pagetree.ID) string {
	n := f.t.Node(id)
	switch n.Name {
	case "BR":
		if !f.inTable(id) {
			return "  \n"
		}
		if f.cfg.AllowRawHTML {
			return cellLineBreak
		}
		return f.escapedSource(id)
	case "TableOfContents":
		return ""
	}
	f.warn(id, "unsupported macro", n.Name)
	return escapeText(n.Markup, f.escapeOpts(id))
}

func (f *formatter) linkTitle(title string) string {
	if title == "" {
		return ""
	}
	return ` "` + escapePunct(title) + `"`
}

func (f *formatter) link(id pagetree.ID) string {
	n := f.t.Node(id)
	var target string
	switch n.Kind {
	case pagetree.Pagelink:
		target = f.pb.PageURL(n.PageName, f.pageName)
	case pagetree.AttachmentLink:
		target = f.pb.AttachmentURL(n.PageName, n.FileName, f.pageName)
	default:
		target = n.URL
	}
	if n.QueryArgs != "" {
		target += "?" + n.QueryArgs
	}
	if n.Anchor != "" {
		target += "#" + n.Anchor
	}
	desc := strings.TrimSpace(strings.ReplaceAll(f.children(id), "\n", " "))
	if desc == "" {
		desc = escapeText(target, escapeOptions{allowEmoji: f.cfg.AllowEmoji})
	}
	return "[" + desc + "](" + escapeTarget(target) + f.linkTitle(n.Link.Title) + ")"
}

func (f *formatter) url(n *pagetree.Node) string {
	return "<" + urlEscaper.Replace(n.Content) + ">"
}

func (f *formatter) image(id pagetree.ID) string {
	n := f.t.Node(id)
	src := n.URL
	if n.Kind == pagetree.AttachmentImage {
		src = f.pb.AttachmentURL(n.PageName, n.FileName, f.pageName)
	}
	ia := n.Image
	if f.cfg.AllowRawHTML && (ia.Width != "" || ia.Height != "" || ia.Align != "") {
		attrs := attrList(
			"src", src,
			"alt", ia.Alt,
			"title", ia.Title,
			"class", ia.Class,
			"longdesc", ia.LongDesc,
			"width", ia.Width,
			"height", ia.Height,
			"align", ia.Align)
		return html.Token{Type: html.SelfClosingTagToken, Data: "img", Attr: attrs}.String()
	}
	alt := escapeText(ia.Alt, escapeOptions{allowEmoji: f.cfg.AllowEmoji})
	return "![" + alt + "](" + escapeTarget(src) + f.linkTitle(ia.Title) + ")"
}

// object renders a transclusion as an HTML object element.
func (f *formatter) object(id pagetree.ID) string {
	if !f.cfg.AllowRawHTML {
		return f.unsupported(id, "transclusion")
	}
	n := f.t.Node(id)
	data := n.URL
	switch {
	case n.Kind == pagetree.AttachmentTransclude:
		data = f.pb.AttachmentURL(n.PageName, n.FileName, f.pageName)
	case data == "":
		data = f.pb.PageURL(n.PageName, f.pageName)
		if n.QueryArgs != "" {
			data += "?" + n.QueryArgs
		}
		if n.Anchor != "" {
			data += "#" + n.Anchor
		}
	}
	oa := n.Object
	attrs := attrList(
		"data", data,
		"type", oa.MimeType,
		"class", oa.Class,
		"title", oa.Title,
		"width", oa.Width,
		"height", oa.Height,
		"standby", oa.Standby)
	return startTag("object", attrs) + f.innerHTML(id) + endTag("object")
}

// inlined renders a text attachment as a block formatted by the parser for
// its file type, followed by a link to the attachment itself.
func (f *formatter) inlined(id pagetree.ID) string {
	n := f.t.Node(id)
	path := f.pb.AttachmentFilepath(n.PageName, n.FileName)
	b, err := afero.ReadFile(f.fs, path)
	if err != nil {
		if f.err == nil {
			f.err = errors.Mark(
				errors.Wrapf(err, "unable to inline attachment %q of page %q", n.FileName, n.PageName),
				ErrAttachment)
		}
		return ""
	}
	content := strings.TrimRight(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")

	ext, name, ok := f.exts.ForFile(n.FileName)
	if !ok {
		ext, name = moinparser.TextExtension{}, "text"
	}
	kid, err := ext.Parse(f.t, content, name, "")
	if err != nil {
		f.log.Warnw("unable to parse attachment",
			"page", f.pageName,
			"file", n.FileName,
			"error", err)
		kid, _ = moinparser.TextExtension{}.Parse(f.t, content, "text", "")
	}
	pt := f.t.Add(pagetree.Fields{Kind: pagetree.ParsedText, Name: name, Content: content}, "")
	f.t.AttachChild(pt, kid)
	Consolidate(f.t, pt)
	f.prepareTables(pt)

	var sb strings.Builder
	if !f.atLineStart(id) {
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.format(pt))
	sb.WriteString("\n[")
	sb.WriteString(escapeText(n.LinkText, escapeOptions{allowEmoji: f.cfg.AllowEmoji}))
	sb.WriteString("](")
	sb.WriteString(escapeTarget(f.pb.AttachmentURL(n.PageName, n.FileName, f.pageName)))
	sb.WriteString(")")
	return sb.String()
}
