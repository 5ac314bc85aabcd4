package pagetree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *Tree) (para, strong, text ID) {
	para = t.Add(Fields{Kind: Paragraph}, "")
	t.AppendChild(t.Root(), para)
	strong = t.Add(Fields{Kind: Strong}, "'''")
	t.AppendChild(para, strong)
	text = t.Add(Fields{Kind: Text, Content: "bold"}, "bold")
	t.AppendChild(strong, text)
	t.AddSource(strong, "'''")
	return para, strong, text
}

func TestTree_sourcePropagation(t *testing.T) {
	tr := New()
	para, strong, _ := buildSample(tr)
	assert.Equal(t, "'''bold'''", tr.Node(tr.Root()).Source)
	assert.Equal(t, "'''bold'''", tr.Node(para).Source)
	assert.Equal(t, "'''bold'''", tr.Node(strong).Source)

	link := tr.Add(Fields{Kind: Link, URL: "http://x"}, "[[http://x|x]]")
	tr.AppendChild(para, link)
	tr.Freeze(link)
	desc := tr.Add(Fields{Kind: Text, Content: "x"}, "x")
	tr.AppendChild(link, desc)
	assert.Equal(t, "[[http://x|x]]", tr.Node(link).Source, "frozen node keeps its source")
	assert.Equal(t, "'''bold'''[[http://x|x]]", tr.Node(tr.Root()).Source, "frozen node stops propagation")
}

func TestTree_navigation(t *testing.T) {
	tr := New()
	para, strong, text := buildSample(tr)
	em := tr.Add(Fields{Kind: Emphasis}, "")
	tr.AppendChild(para, em)

	assert.Equal(t, None, tr.PrevSibling(tr.Root()))
	assert.Equal(t, None, tr.NextSibling(tr.Root()))
	assert.Equal(t, strong, tr.PrevSibling(em))
	assert.Equal(t, em, tr.NextSibling(strong))
	assert.Equal(t, None, tr.NextSibling(em))
	assert.Equal(t, []ID{strong, para, tr.Root()}, tr.Ancestors(text))
	assert.Equal(t, []ID{para, strong, text, em}, tr.Descendants(tr.Root()))

	assert.True(t, tr.InX(text, Strong, Paragraph))
	assert.True(t, tr.InX(text, Paragraph, noKind))
	assert.False(t, tr.InX(text, PageRoot, Paragraph), "bounded by paragraph")
	assert.False(t, tr.InX(em, Strong, noKind))
}

func TestTree_insertRemoveUnwrap(t *testing.T) {
	tr := New()
	para, strong, text := buildSample(tr)

	require.Equal(t, strong, tr.RemoveChild(para, 0))
	assert.Empty(t, tr.Children(para))
	assert.Equal(t, None, tr.Parent(strong))

	tr.InsertChild(para, 0, strong)
	assert.Equal(t, para, tr.Parent(strong))

	tr.Unwrap(strong)
	assert.Equal(t, []ID{text}, tr.Children(para))
	assert.Equal(t, para, tr.Parent(text))

	assert.Panics(t, func() { tr.AttachChild(para, text) }, "double attach")
}

func TestTree_equalAndHash(t *testing.T) {
	a, b := New(), New()
	buildSample(a)
	_, _, text := buildSample(b)
	b.Node(text).Source = "different source"

	assert.True(t, Equal(a, a.Root(), b, b.Root()))
	assert.Equal(t, a.Hash(a.Root()), b.Hash(b.Root()))

	b.Node(text).Content = "other"
	assert.False(t, Equal(a, a.Root(), b, b.Root()))
	assert.NotEqual(t, a.Hash(a.Root()), b.Hash(b.Root()))
}

func TestTree_clone(t *testing.T) {
	tr := New()
	para, _, _ := buildSample(tr)
	c := tr.Clone()
	c.RemoveChild(para, 0)
	assert.Len(t, tr.Children(para), 1, "original untouched")
	assert.Empty(t, c.Children(para))
}

func TestTree_Format(t *testing.T) {
	tr := New()
	buildSample(tr)
	assert.Equal(t, ""+
		"PageRoot\n"+
		"  Paragraph\n"+
		"    Strong\n"+
		"      Text content=\"bold\"\n",
		fmt.Sprint(tr))
	assert.Contains(t, fmt.Sprintf("%+v", tr), `Strong src="'''bold'''"`)
}
