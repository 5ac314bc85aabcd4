package mdformat

import "github.com/jcorbin/moin2hugo/internal/pagetree"

// Consolidate normalizes the subtree at id in place: adjacent Text siblings
// are merged, and Remark nodes are dropped.
func Consolidate(t *pagetree.Tree, id pagetree.ID) {
	for i := 0; i < len(t.Children(id)); {
		kids := t.Children(id)
		kid := kids[i]
		switch t.Kind(kid) {
		case pagetree.Remark:
			t.RemoveChild(id, i)
			continue
		case pagetree.Text:
			if i > 0 && t.Kind(kids[i-1]) == pagetree.Text {
				prev, n := t.Node(kids[i-1]), t.Node(kid)
				prev.Content += n.Content
				prev.Source += n.Source
				t.RemoveChild(id, i)
				continue
			}
		default:
			Consolidate(t, kid)
		}
		i++
	}
}
