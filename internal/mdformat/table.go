package mdformat

import (
	"sort"
	"strings"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

const (
	extendedTableOpen  = "{{< extended-markdown-table >}}"
	extendedTableClose = "{{< /extended-markdown-table >}}"
)

// prepareTables normalizes every table under id for rendering.
func (f *formatter) prepareTables(id pagetree.ID) {
	tables := []pagetree.ID{}
	if f.t.Kind(id) == pagetree.Table {
		tables = append(tables, id)
	}
	for _, kid := range f.t.Descendants(id) {
		if f.t.Kind(kid) == pagetree.Table {
			tables = append(tables, kid)
		}
	}
	for _, table := range tables {
		rows := f.t.Children(table)
		for _, row := range rows {
			for _, cell := range f.t.Children(row) {
				f.trimCell(cell)
			}
		}
		if len(rows) > 0 {
			f.detectHeader(rows[0])
		}
		f.expandSpans(table)
	}
}

// trimCell drops whitespace only text from both ends of a cell.
func (f *formatter) trimCell(cell pagetree.ID) {
	blank := func(id pagetree.ID) bool {
		n := f.t.Node(id)
		return n.Kind == pagetree.Text && strings.TrimSpace(n.Content) == ""
	}
	for kids := f.t.Children(cell); len(kids) > 0 && blank(kids[0]); kids = f.t.Children(cell) {
		f.t.RemoveChild(cell, 0)
	}
	for kids := f.t.Children(cell); len(kids) > 0 && blank(kids[len(kids)-1]); kids = f.t.Children(cell) {
		f.t.RemoveChild(cell, len(kids)-1)
	}
}

// detectHeader promotes row to a header row when it is styled, or when all
// of its content is emphasized; that emphasis is then dropped, since header
// cells already render distinctly.
func (f *formatter) detectHeader(row pagetree.ID) {
	n := f.t.Node(row)
	if n.IsHeader || !f.cfg.DetectTableHeaderHeuristically {
		return
	}
	if n.Row.Class != "" || n.Row.BgColor != "" {
		n.IsHeader = true
		return
	}
	emphasized := false
	for _, cell := range f.t.Children(row) {
		for _, kid := range f.t.Children(cell) {
			switch f.t.Kind(kid) {
			case pagetree.Emphasis, pagetree.Strong:
				emphasized = true
			default:
				return
			}
		}
	}
	if !emphasized {
		return
	}
	n.IsHeader = true
	for _, cell := range f.t.Children(row) {
		for unwrapped := true; unwrapped; {
			unwrapped = false
			for _, kid := range f.t.Children(cell) {
				switch f.t.Kind(kid) {
				case pagetree.Emphasis, pagetree.Strong:
					f.t.Unwrap(kid)
					unwrapped = true
				}
				if unwrapped {
					break
				}
			}
		}
		Consolidate(f.t, cell)
	}
}

// stub returns a new placeholder cell covered by a span, holding the given
// marker in extended mode.
func (f *formatter) stub(marker string) pagetree.ID {
	cell := f.t.Add(pagetree.Fields{Kind: pagetree.TableCell}, "")
	if f.cfg.UseExtendedMarkdownTable {
		f.t.AttachChild(cell, f.t.Add(pagetree.Fields{Kind: pagetree.Raw, Content: marker}, ""))
	}
	f.stubs[cell] = true
	return cell
}

// expandSpans inserts stub cells for column and row spans, so that every
// cell of the rendered grid corresponds to a TableCell node.
func (f *formatter) expandSpans(table pagetree.ID) {
	rows := f.t.Children(table)
	pending := make(map[int][]int, len(rows))
	for r, row := range rows {
		cols := pending[r]
		sort.Ints(cols)
		for _, c := range cols {
			if n := len(f.t.Children(row)); c > n {
				c = n
			}
			f.t.InsertChild(row, c, f.stub("^"))
		}

		col := 0
		for _, cell := range append([]pagetree.ID(nil), f.t.Children(row)...) {
			if f.stubs[cell] {
				col++
				continue
			}
			ca := f.t.Node(cell).Cell
			for k := 1; k < ca.RowSpan && r+k < len(rows); k++ {
				pending[r+k] = append(pending[r+k], col)
			}
			span := ca.ColSpan
			if span < 1 {
				span = 1
			}
			for k := 1; k < span; k++ {
				f.t.InsertChild(row, col+k, f.stub(">"))
			}
			col += span
		}
	}
}

// table renders a prepared table as a pipe table. Markdown requires a header
// row, so an empty one is emitted for tables without one.
func (f *formatter) table(id pagetree.ID) string {
	rows := f.t.Children(id)
	if len(rows) == 0 {
		return ""
	}
	grid := make([][]string, len(rows))
	ncols := 0
	for r, row := range rows {
		for _, cell := range f.t.Children(row) {
			grid[r] = append(grid[r], f.cell(cell))
		}
		if len(grid[r]) > ncols {
			ncols = len(grid[r])
		}
	}
	if ncols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteByte('|')
		for c := 0; c < ncols; c++ {
			sb.WriteByte(' ')
			if c < len(cells) {
				sb.WriteString(cells[c])
			}
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	if f.cfg.UseExtendedMarkdownTable {
		sb.WriteString(extendedTableOpen)
		sb.WriteByte('\n')
	}
	body := 0
	if f.t.Node(rows[0]).IsHeader {
		writeRow(grid[0])
		body = 1
	} else {
		writeRow(nil)
	}
	sb.WriteByte('|')
	for _, align := range f.alignments(rows[body:], ncols) {
		switch align {
		case "left":
			sb.WriteString(" :-- |")
		case "center":
			sb.WriteString(" :-: |")
		case "right":
			sb.WriteString(" --: |")
		default:
			sb.WriteString(" --- |")
		}
	}
	sb.WriteByte('\n')
	for _, cells := range grid[body:] {
		writeRow(cells)
	}
	if f.cfg.UseExtendedMarkdownTable {
		sb.WriteString(extendedTableClose)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// alignments returns the majority alignment of each column; ties fall back
// to no alignment.
func (f *formatter) alignments(rows []pagetree.ID, ncols int) []string {
	votes := make([]map[string]int, ncols)
	for c := range votes {
		votes[c] = make(map[string]int)
	}
	for _, row := range rows {
		for c, cell := range f.t.Children(row) {
			if c < ncols && !f.stubs[cell] {
				votes[c][f.t.Node(cell).Cell.Align]++
			}
		}
	}
	aligns := make([]string, ncols)
	for c, vote := range votes {
		best := vote[""]
		for _, align := range []string{"left", "center", "right"} {
			if vote[align] > best {
				aligns[c], best = align, vote[align]
			}
		}
	}
	return aligns
}

// cell renders table cell content on a single line.
func (f *formatter) cell(id pagetree.ID) string {
	s := strings.TrimSpace(f.container(id))
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	sep := " "
	if f.cfg.AllowRawHTML {
		sep = cellLineBreak
	}
	return strings.Join(lines, sep)
}
