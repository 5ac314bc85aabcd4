/* Package pagetree implements the document tree shared by the MoinMoin parser
and the Markdown formatter.

All nodes of a page live in a single arena owned by a Tree, and are referred to
by their stable ID index. Parent links are IDs too, so the cyclic child/parent
relationship never needs pointers, and per-node memo tables may simply be keyed
by ID.

Every node carries the MoinMoin source text it was parsed from. Appending a
child extends the source text of every ancestor, up to (but excluding) the
first frozen one.
*/
package pagetree

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ID is the stable arena index of a node within its Tree.
type ID int32

// None is the ID of no node: the parent of the root, or of a detached node.
const None ID = -1

// Fields holds all comparable per-node data; two nodes are structurally
// equal when their Fields are equal and their children are pairwise equal.
//
// Which fields are meaningful depends on Kind; unused fields stay zero.
type Fields struct {
	Kind Kind

	// Content of Text, SGMLEntity, Smiley, Sup, Sub, Code, Url, Comment,
	// Raw, Codeblock and ParsedText.
	Content string

	Depth     int    // Heading
	Name      string // Macro name, ParsedText parser name
	Args      string // Macro arguments, ParsedText parser arguments
	Markup    string // Macro markup
	SyntaxID  string // Codeblock language
	URL       string // Link target, Image source, Transclude of an external object
	PageName  string // page of links, attachments, and transclusions
	WikiName  string // Interwikilink
	FileName  string // attachment kinds
	Anchor    string
	QueryArgs string
	LinkText  string // AttachmentInlined
	NumType   string // NumberList: one of 1 a A i I
	NumStart  int    // NumberList: explicit start, 0 if unset
	IsHeader  bool   // TableRow
	NoMarker  bool   // Listitem opened by bare indentation

	Link   LinkAttr
	Image  ImageAttr
	Object ObjectAttr
	Table  TableAttr
	Row    TableRowAttr
	Cell   TableCellAttr
}

// Node is a single page element.
type Node struct {
	Fields

	// Source is the MoinMoin text this node represents.
	Source string

	// Frozen nodes no longer propagate source text to their ancestors.
	Frozen bool

	parent   ID
	children []ID
}

// Tree is an arena of page elements rooted at a PageRoot node.
//
// It is not safe to use a Tree from parallel goroutines.
type Tree struct {
	nodes []*Node
}

// New returns a new tree containing only an empty PageRoot.
func New() *Tree {
	var t Tree
	t.Add(Fields{Kind: PageRoot}, "")
	return &t
}

// Root returns the ID of the PageRoot.
func (t *Tree) Root() ID { return 0 }

// Len returns how many nodes have been allocated, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Add allocates a new detached node.
func (t *Tree) Add(f Fields, source string) ID {
	id := ID(len(t.nodes))
	t.nodes = append(t.nodes, &Node{Fields: f, Source: source, parent: None})
	return id
}

// Node returns the node for id; the returned pointer stays valid for the
// lifetime of the tree.
func (t *Tree) Node(id ID) *Node { return t.nodes[id] }

// Kind is a convenience for Node(id).Kind that tolerates None.
func (t *Tree) Kind(id ID) Kind {
	if id == None {
		return noKind
	}
	return t.nodes[id].Kind
}

// Parent returns the parent of id, or None.
func (t *Tree) Parent(id ID) ID { return t.nodes[id].parent }

// Children returns the ordered children of id; callers must not modify it.
func (t *Tree) Children(id ID) []ID { return t.nodes[id].children }

// AppendChild attaches child as the last child of parent, and propagates the
// child's source text up the ancestor chain.
func (t *Tree) AppendChild(parent, child ID) {
	t.AttachChild(parent, child)
	t.AddSource(parent, t.nodes[child].Source)
}

// AttachChild attaches child as the last child of parent without source
// propagation.
func (t *Tree) AttachChild(parent, child ID) {
	t.InsertChild(parent, len(t.nodes[parent].children), child)
}

// InsertChild attaches child at index i of parent's children, without source
// propagation. Panics if child is already attached.
func (t *Tree) InsertChild(parent ID, i int, child ID) {
	c := t.nodes[child]
	if c.parent != None || child == t.Root() {
		panic(fmt.Sprintf("pagetree: node %v already attached", child))
	}
	p := t.nodes[parent]
	p.children = append(p.children, None)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = child
	c.parent = parent
}

// RemoveChild detaches and returns the child at index i of parent.
func (t *Tree) RemoveChild(parent ID, i int) ID {
	p := t.nodes[parent]
	child := p.children[i]
	p.children = append(p.children[:i], p.children[i+1:]...)
	t.nodes[child].parent = None
	return child
}

// Unwrap replaces id within its parent by id's own children.
func (t *Tree) Unwrap(id ID) {
	parent := t.Parent(id)
	if parent == None {
		return
	}
	i := t.Index(id)
	t.RemoveChild(parent, i)
	n := t.nodes[id]
	kids := n.children
	n.children = nil
	for j, kid := range kids {
		t.nodes[kid].parent = None
		t.InsertChild(parent, i+j, kid)
	}
}

// AddSource appends s to the source text of id and each of its ancestors,
// stopping at the first frozen node.
func (t *Tree) AddSource(id ID, s string) {
	if s == "" {
		return
	}
	for ; id != None; id = t.nodes[id].parent {
		n := t.nodes[id]
		if n.Frozen {
			break
		}
		n.Source += s
	}
}

// Freeze stops any further source propagation through id.
func (t *Tree) Freeze(id ID) { t.nodes[id].Frozen = true }

// Index returns the position of id within its parent's children, or -1.
func (t *Tree) Index(id ID) int {
	parent := t.nodes[id].parent
	if parent == None {
		return -1
	}
	for i, kid := range t.nodes[parent].children {
		if kid == id {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling before id, or None.
func (t *Tree) PrevSibling(id ID) ID {
	if i := t.Index(id); i > 0 {
		return t.nodes[t.nodes[id].parent].children[i-1]
	}
	return None
}

// NextSibling returns the sibling after id, or None.
func (t *Tree) NextSibling(id ID) ID {
	if i := t.Index(id); i >= 0 {
		kids := t.nodes[t.nodes[id].parent].children
		if i+1 < len(kids) {
			return kids[i+1]
		}
	}
	return None
}

// Ancestors returns the parent chain of id, nearest first.
func (t *Tree) Ancestors(id ID) []ID {
	var ids []ID
	for id = t.nodes[id].parent; id != None; id = t.nodes[id].parent {
		ids = append(ids, id)
	}
	return ids
}

// Descendants returns all nodes under id in pre-order, excluding id.
func (t *Tree) Descendants(id ID) []ID {
	var ids []ID
	var walk func(ID)
	walk = func(id ID) {
		for _, kid := range t.nodes[id].children {
			ids = append(ids, kid)
			walk(kid)
		}
	}
	walk(id)
	return ids
}

// InX returns true if id, or one of its ancestors, has kind target before any
// ancestor of kind upperBound is reached. Pass a zero upperBound for no bound.
func (t *Tree) InX(id ID, target, upperBound Kind) bool {
	for ; id != None; id = t.nodes[id].parent {
		switch t.nodes[id].Kind {
		case target:
			return true
		case upperBound:
			if upperBound != noKind {
				return false
			}
		}
	}
	return false
}

// Clone returns a deep copy of the tree; IDs are preserved.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make([]*Node, len(t.nodes))}
	for i, n := range t.nodes {
		cn := *n
		cn.children = append([]ID(nil), n.children...)
		c.nodes[i] = &cn
	}
	return c
}

// Equal returns true if the subtree at a in ta is structurally equal to the
// subtree at b in tb; source text and frozen state are ignored.
func Equal(ta *Tree, a ID, tb *Tree, b ID) bool {
	na, nb := ta.nodes[a], tb.nodes[b]
	if na.Fields != nb.Fields || len(na.children) != len(nb.children) {
		return false
	}
	for i := range na.children {
		if !Equal(ta, na.children[i], tb, nb.children[i]) {
			return false
		}
	}
	return true
}

// Hash returns a content hash of the subtree at id, consistent with Equal.
func (t *Tree) Hash(id ID) uint64 {
	d := xxhash.New()
	t.hashInto(d, id)
	return d.Sum64()
}

func (t *Tree) hashInto(d *xxhash.Digest, id ID) {
	n := t.nodes[id]
	fmt.Fprintf(d, "%#v(", n.Fields)
	for _, kid := range n.children {
		t.hashInto(d, kid)
	}
	d.WriteString(")")
}
