package moinparser

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jcorbin/moin2hugo/internal/mdutil"
	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

var (
	linkAttrNames   = []string{"class", "title", "target", "accesskey", "rel"}
	imageAttrNames  = []string{"class", "title", "longdesc", "width", "height", "align", "alt"}
	objectAttrNames = []string{"class", "title", "width", "height", "type", "standby"}
)

// cellAttrs collects the attributes given by a table cell marker: those of
// the cell itself, and the row and table prefixed ones.
type cellAttrs struct {
	table pagetree.TableAttr
	row   pagetree.TableRowAttr
	cell  pagetree.TableCellAttr
}

// parseCellAttrs parses the body of a "<...>" table cell specifier, e.g.
// `-2 :`, `|3`, `#ff0000 50%`, or `tablewidth="100%" rowclass=x`.
func (p *parser) parseCellAttrs(spec string) (ca cellAttrs) {
	s := spec
	for len(s) > 0 {
		c := s[0]
		switch {
		case c == ' ' || c == ',' || c == '\t':
			s = s[1:]

		case isDigit(c):
			n := digits(s)
			if n < len(s) && s[n] == '%' {
				ca.cell.Width = s[:n+1]
				s = s[n+1:]
			} else {
				p.invalidAttr(spec, s[:n], `expected "%" after width`)
				s = s[n:]
			}

		case c == '-' || c == '|':
			n := digits(s[1:])
			if n == 0 {
				p.invalidAttr(spec, s[:1], "expected an integer span")
				s = s[1:]
				break
			}
			span, _ := strconv.Atoi(s[1 : 1+n])
			if c == '-' {
				ca.cell.ColSpan = span
			} else {
				ca.cell.RowSpan = span
			}
			s = s[1+n:]

		case c == '(':
			ca.cell.Align, s = "left", s[1:]
		case c == ':':
			ca.cell.Align, s = "center", s[1:]
		case c == ')':
			ca.cell.Align, s = "right", s[1:]
		case c == '^':
			ca.cell.VAlign, s = "top", s[1:]

		case c == '#':
			if len(s) >= 7 && colorRE.MatchString(s[1:7]) {
				ca.cell.BgColor = s[:7]
				s = s[7:]
			} else {
				p.invalidAttr(spec, s, "expected a color value")
				s = s[1:]
			}

		case isLetter(c):
			n := 1
			for n < len(s) && (isLetter(s[n]) || isDigit(s[n]) || s[n] == '-' || s[n] == '_') {
				n++
			}
			key := s[:n]
			s = strings.TrimLeft(s[n:], " ")
			if !strings.HasPrefix(s, "=") {
				if key == "v" || key == "V" {
					ca.cell.VAlign = "bottom"
				} else {
					p.invalidAttr(spec, key, "expected a value")
				}
				break
			}
			var val string
			val, s = cutAttrValue(strings.TrimLeft(s[1:], " "))
			p.setCellAttr(&ca, strings.ToLower(key), val)

		default:
			p.invalidAttr(spec, s[:1], "unexpected character")
			s = s[1:]
		}
	}
	return ca
}

// cutAttrValue splits a leading, possibly quoted, value from s.
func cutAttrValue(s string) (val, rest string) {
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		if i := strings.IndexByte(s[1:], s[0]); i >= 0 {
			return mdutil.UnquoteArg(s[:i+2]), s[i+2:]
		}
		return s[1:], ""
	}
	i := strings.IndexAny(s, " ,")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func (p *parser) setCellAttr(ca *cellAttrs, key, val string) {
	span := func(dst *int) {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			*dst = n
		} else {
			p.invalidAttr(val, key, "expected a positive integer")
		}
	}
	switch key {
	case "class":
		ca.cell.Class = val
	case "style":
		ca.cell.Style = val
	case "id":
		ca.cell.ID = val
	case "width":
		ca.cell.Width = val
	case "height":
		ca.cell.Height = val
	case "align":
		ca.cell.Align = val
	case "valign":
		ca.cell.VAlign = val
	case "bgcolor":
		ca.cell.BgColor = val
	case "abbr":
		ca.cell.Abbr = val
	case "colspan":
		span(&ca.cell.ColSpan)
	case "rowspan":
		span(&ca.cell.RowSpan)

	case "tableclass":
		ca.table.Class = val
	case "tablestyle":
		ca.table.Style = val
	case "tableid":
		ca.table.ID = val
	case "tablewidth":
		ca.table.Width = val
	case "tablealign":
		ca.table.Align = val
	case "tablebgcolor":
		ca.table.BgColor = val

	case "rowclass":
		ca.row.Class = val
	case "rowstyle":
		ca.row.Style = val
	case "rowid":
		ca.row.ID = val
	case "rowbgcolor":
		ca.row.BgColor = val

	default:
		p.invalidAttr(val, key, "unknown table attribute")
	}
}

// parseParams parses the comma separated parameters of link and
// transclusion markup, e.g. `class=x, title="a b", &do=get`. Keys starting
// with "&" become query arguments; other keys are kept only if acceptable.
func (p *parser) parseParams(params string, acceptable []string) (attrs map[string]string, query string) {
	tokens := mdutil.SplitAttrs(params)
	var q []string
	for i := 0; i < len(tokens); i++ {
		key := tokens[i]
		if i+1 >= len(tokens) || tokens[i+1] != "=" {
			p.invalidAttr(params, key, "ignoring positional parameter")
			continue
		}
		val := ""
		if i+2 < len(tokens) {
			val = mdutil.UnquoteArg(tokens[i+2])
		}
		i += 2
		if strings.HasPrefix(key, "&") {
			q = append(q, url.QueryEscape(key[1:])+"="+url.QueryEscape(val))
			continue
		}
		if !containsString(acceptable, key) {
			p.invalidAttr(params, key, "unacceptable parameter")
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[key] = val
	}
	return attrs, strings.Join(q, "&")
}

func linkAttr(attrs map[string]string) pagetree.LinkAttr {
	return pagetree.LinkAttr{
		Class:     attrs["class"],
		Title:     attrs["title"],
		Target:    attrs["target"],
		AccessKey: attrs["accesskey"],
		Rel:       attrs["rel"],
	}
}

func imageAttr(attrs map[string]string) pagetree.ImageAttr {
	return pagetree.ImageAttr{
		Class:    attrs["class"],
		Alt:      attrs["alt"],
		Title:    attrs["title"],
		LongDesc: attrs["longdesc"],
		Width:    attrs["width"],
		Height:   attrs["height"],
		Align:    attrs["align"],
	}
}

func objectAttr(attrs map[string]string) pagetree.ObjectAttr {
	return pagetree.ObjectAttr{
		Class:    attrs["class"],
		Title:    attrs["title"],
		Width:    attrs["width"],
		Height:   attrs["height"],
		MimeType: attrs["type"],
		Standby:  attrs["standby"],
	}
}

func (p *parser) invalidAttr(markup, attr, reason string) {
	p.log.Infow("dropping invalid attribute",
		"page", p.pageName,
		"line", p.lineno,
		"attr", attr,
		"markup", markup,
		"reason", reason)
}

func containsString(ss []string, s string) bool {
	for _, t := range ss {
		if t == s {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool  { return '0' <= c && c <= '9' }
func isLetter(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

func digits(s string) (n int) {
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}
