package mdformat

import (
	"strings"

	"github.com/jcorbin/moin2hugo/internal/mdutil"
	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// list renders a bullet or number list. Item content is indented to the
// content column of its marker, so that nested blocks stay inside the item.
func (f *formatter) list(id pagetree.ID) string {
	n := f.t.Node(id)
	ordinal := 1
	if n.Kind == pagetree.NumberList && n.NumStart > 0 {
		ordinal = n.NumStart
	}
	var sb strings.Builder
	for i, item := range f.t.Children(id) {
		m := mark{Type: itemMark, Delim: '*'}
		if n.Kind == pagetree.NumberList {
			m = mark{Type: itemMark, Delim: '.', Width: 1}
			if i == 0 {
				m.Width = ordinal
			}
		}
		sb.WriteString(f.item(m, item))
	}
	return sb.String()
}

// item renders a list item or definition body under mark m.
func (f *formatter) item(m mark, id pagetree.ID) string {
	body := f.container(id)
	if body == "" {
		return strings.TrimRight(m.String(), " ") + "\n"
	}
	return m.String() + mdutil.Indent(body, m.indent(), true) + "\n"
}

func (f *formatter) definitionList(id pagetree.ID) string {
	var sb strings.Builder
	for _, kid := range f.t.Children(id) {
		if f.t.Kind(kid) == pagetree.DefinitionTerm {
			term := strings.TrimSpace(strings.ReplaceAll(f.children(kid), "\n", " "))
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(term)
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(f.item(mark{Type: definitionMark, Delim: ':'}, kid))
	}
	return sb.String()
}
