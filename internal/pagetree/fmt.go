package pagetree

import (
	"fmt"
	"io"
	"strings"
)

// Format writes an indented outline of the whole tree, providing improved
// fmt.Printf display. Node source text is included when formatted with "%+v".
func (t *Tree) Format(f fmt.State, _ rune) {
	t.Dump(f, t.Root(), f.Flag('+'))
}

// Dump writes an indented outline of the subtree at id, one node per line.
func (t *Tree) Dump(w io.Writer, id ID, withSource bool) error {
	var sb strings.Builder
	t.dump(&sb, id, 0, withSource)
	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *Tree) dump(sb *strings.Builder, id ID, depth int, withSource bool) {
	n := t.nodes[id]
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprint(sb, n.Fields)
	if withSource {
		fmt.Fprintf(sb, " src=%q", n.Source)
	}
	sb.WriteByte('\n')
	for _, kid := range n.children {
		t.dump(sb, kid, depth+1, withSource)
	}
}

// Format writes the kind followed by all non-zero attributes in a terse
// "Kind attr=value" form.
func (f Fields) Format(st fmt.State, _ rune) {
	io.WriteString(st, f.Kind.String())
	str := func(name, val string) {
		if val != "" {
			fmt.Fprintf(st, " %v=%q", name, val)
		}
	}
	num := func(name string, val int) {
		if val != 0 {
			fmt.Fprintf(st, " %v=%v", name, val)
		}
	}
	str("content", f.Content)
	num("depth", f.Depth)
	str("name", f.Name)
	str("args", f.Args)
	str("markup", f.Markup)
	str("syntax", f.SyntaxID)
	str("url", f.URL)
	str("page", f.PageName)
	str("wiki", f.WikiName)
	str("file", f.FileName)
	str("anchor", f.Anchor)
	str("query", f.QueryArgs)
	str("text", f.LinkText)
	str("numtype", f.NumType)
	num("start", f.NumStart)
	if f.IsHeader {
		io.WriteString(st, " header")
	}
	if f.NoMarker {
		io.WriteString(st, " nomarker")
	}
	if f.Link != (LinkAttr{}) {
		fmt.Fprintf(st, " link%+v", f.Link)
	}
	if f.Image != (ImageAttr{}) {
		fmt.Fprintf(st, " image%+v", f.Image)
	}
	if f.Object != (ObjectAttr{}) {
		fmt.Fprintf(st, " object%+v", f.Object)
	}
	if f.Table != (TableAttr{}) {
		fmt.Fprintf(st, " table%+v", f.Table)
	}
	if f.Row != (TableRowAttr{}) {
		fmt.Fprintf(st, " row%+v", f.Row)
	}
	if f.Cell != (TableCellAttr{}) {
		fmt.Fprintf(st, " cell%+v", f.Cell)
	}
}
