package moinparser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jcorbin/moin2hugo/internal/pagetree"

	. "github.com/jcorbin/moin2hugo/internal/moinparser"
)

var testSite = &SiteConfig{
	InterwikiName: "TestWiki",
	Interwiki: map[string]string{
		"MoinMoin":  "http://moinmo.in/",
		"Wikipedia": "https://en.wikipedia.org/wiki/",
	},
}

func TestParse_data(t *testing.T) {
	datadriven.RunTest(t, "testdata/parse", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "parse":
			var page string
			if d.HasArg("page") {
				d.ScanArgs(t, "page", &page)
			}
			text := strings.TrimPrefix(d.Input, ".") + "\n"
			tree, err := Parse(text, page, testSite, d.HasArg("strict"))
			if err != nil {
				return fmt.Sprintf("error: %v\n", err)
			}
			return fmt.Sprint(tree)
		default:
			d.Fatalf(t, "unknown command %q", d.Cmd)
			return ""
		}
	})
}

func parse(t *testing.T, page, text string) *pagetree.Tree {
	tree, err := Parse(text, page, testSite, false)
	require.NoError(t, err, "lax parse must not fail")
	return tree
}

// firstOf returns the first node of kind in pre-order.
func firstOf(t *testing.T, tree *pagetree.Tree, kind pagetree.Kind) *pagetree.Node {
	for _, id := range tree.Descendants(tree.Root()) {
		if n := tree.Node(id); n.Kind == kind {
			return n
		}
	}
	require.Failf(t, "missing node", "no %v in:\n%v", kind, tree)
	return nil
}

func textOf(tree *pagetree.Tree, id pagetree.ID) string {
	var sb strings.Builder
	for _, kid := range tree.Descendants(id) {
		if n := tree.Node(kid); n.Kind == pagetree.Text {
			sb.WriteString(n.Content)
		}
	}
	return sb.String()
}

func TestParse_sourceTotality(t *testing.T) {
	for _, text := range []string{
		"",
		"\n",
		"plain",
		"#format wiki\n#language en\n= Title =\nbody\n",
		"a\tb\r\nc\td\r\n",
		"\t* tabbed\n\t\t* deeper\n",
		" * one\n  * two\n\n * three\n",
		" 1. a\n 1.#3 b\n A. x\n",
		" term:: desc\n  more\n",
		"||<tablewidth=\"50%\">a||b||\n||c|| '''d''' ||\n## inside\n||e||f||\n\nafter\n",
		"{{{\ncode\n  indented\n}}} trailing\n",
		"{{{{\n{{{#!python\nx}}}\n}}}}\n",
		"{{{#!csv\na;b\n1;2\n}}}\n",
		"[[http://example.com|Example|class=x, title=\"T\"]] [[attachment:f.pdf]]\n",
		"{{attachment:pic.png|a picture|width=100}} {{OtherPage}}\n",
		"[[drawing:sketch]] {{drawing:sketch}}\n",
		"''a'''b''c''' __u__ --(s)-- ~-small-~ ~+big+~ ^sup^ ,,sub,, `tt` {{{tt}}}\n",
		"/* remark */ :) <<Macro(arg)>> &amp; < > me@example.com\n",
		"text\n----\nMoinMoin:FrontPage Foo:bar !WikiName\n",
		"'''unclosed\n  * dangling\n",
	} {
		tree := parse(t, "Some/Page", text)
		assert.Equal(t, text, tree.Node(tree.Root()).Source, "root source of %q", text)
	}
}

func TestParse_strict(t *testing.T) {
	for _, tc := range []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{"unclosed", "'''bold\n", 1, "unclosed Strong at end of page"},
		{"unclosed in item", " * ''a\n * b\n", 2, "unclosed Emphasis at end of list item"},
		{"misnested", "''a'''b''c'''\n", 1, "misnested Emphasis"},
		{"dedent", " * a\n   * b\n  * c\n", 3, "dedent to an unknown indentation level"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Parse(tc.text, "Page", testSite, true)
			assert.Nil(t, tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStructure), "must be marked ErrStructure")
			var se *StructuralError
			require.True(t, errors.As(err, &se), "must be a StructuralError")
			assert.Equal(t, tc.line, se.Line)
			assert.Equal(t, tc.reason, se.Reason)

			_, err = Parse(tc.text, "Page", testSite, false)
			assert.NoError(t, err, "lax mode recovers")
		})
	}

	_, err := Parse("''a'' '''b''' {{{x}}}\n", "Page", testSite, true)
	assert.NoError(t, err)
}

func TestParse_misnestedLax(t *testing.T) {
	tree := parse(t, "", "''a'''b''c'''")
	assert.Equal(t, ""+
		"PageRoot\n"+
		"  Paragraph\n"+
		"    Emphasis\n"+
		"      Text content=\"a\"\n"+
		"      Strong\n"+
		"        Text content=\"b\"\n"+
		"    Strong\n"+
		"      Text content=\"c\"\n"+
		"    Text content=\" \"\n",
		fmt.Sprint(tree))
}

func TestParse_links(t *testing.T) {
	t.Run("external", func(t *testing.T) {
		tree := parse(t, "Home", `[[http://example.com|Example|title="An Example"]]`)
		n := firstOf(t, tree, pagetree.Link)
		assert.Equal(t, "http://example.com", n.URL)
		assert.Equal(t, pagetree.LinkAttr{Class: "http", Title: "An Example"}, n.Link)
		assert.Equal(t, `[[http://example.com|Example|title="An Example"]]`, n.Source)
		assert.Equal(t, "Example ", textOf(tree, tree.Root()))
	})

	t.Run("external default text", func(t *testing.T) {
		tree := parse(t, "Home", "[[https://example.com/a]]")
		n := firstOf(t, tree, pagetree.Link)
		assert.Equal(t, "https://example.com/a", n.URL)
		assert.Equal(t, "https://example.com/a", firstOf(t, tree, pagetree.Text).Content)
	})

	t.Run("attachment", func(t *testing.T) {
		tree := parse(t, "Home", "[[attachment:Other/my%20file.pdf|the file|&do=get]]")
		n := firstOf(t, tree, pagetree.AttachmentLink)
		assert.Equal(t, "Other", n.PageName)
		assert.Equal(t, "my file.pdf", n.FileName)
		assert.Equal(t, "do=get", n.QueryArgs)
		assert.Equal(t, pagetree.LinkAttr{}, n.Link)
	})

	t.Run("page with anchor", func(t *testing.T) {
		tree := parse(t, "Home", "[[FrontPage#intro]] [[#local]]")
		var links []*pagetree.Node
		for _, id := range tree.Descendants(tree.Root()) {
			if n := tree.Node(id); n.Kind == pagetree.Pagelink {
				links = append(links, n)
			}
		}
		require.Len(t, links, 2)
		assert.Equal(t, "FrontPage", links[0].PageName)
		assert.Equal(t, "intro", links[0].Anchor)
		assert.Equal(t, "Home", links[1].PageName)
		assert.Equal(t, "local", links[1].Anchor)
	})

	t.Run("subpages", func(t *testing.T) {
		tree := parse(t, "A/B", "[[/Child]]")
		assert.Equal(t, "A/B/Child", firstOf(t, tree, pagetree.Pagelink).PageName)
		tree = parse(t, "A/B", "[[../Sibling]]")
		assert.Equal(t, "A/Sibling", firstOf(t, tree, pagetree.Pagelink).PageName)
		tree = parse(t, "A/B", "see ../SiblingPage too")
		assert.Equal(t, "A/SiblingPage", firstOf(t, tree, pagetree.Pagelink).PageName)
	})

	t.Run("interwiki", func(t *testing.T) {
		tree := parse(t, "Home", "MoinMoin:FrontPage and [[Wikipedia:Go (programming language)|Go]]")
		n := firstOf(t, tree, pagetree.Interwikilink)
		assert.Equal(t, "MoinMoin", n.WikiName)
		assert.Equal(t, "FrontPage", n.PageName)

		var iws []string
		for _, id := range tree.Descendants(tree.Root()) {
			if n := tree.Node(id); n.Kind == pagetree.Interwikilink {
				iws = append(iws, n.WikiName+":"+n.PageName)
			}
		}
		assert.Equal(t, []string{"MoinMoin:FrontPage", "Wikipedia:Go (programming language)"}, iws)
	})

	t.Run("local interwiki", func(t *testing.T) {
		tree := parse(t, "Home", "TestWiki:OtherPage Self:ThirdPage")
		var pages []string
		for _, id := range tree.Descendants(tree.Root()) {
			if n := tree.Node(id); n.Kind == pagetree.Pagelink {
				pages = append(pages, n.PageName)
			}
		}
		assert.Equal(t, []string{"OtherPage", "ThirdPage"}, pages)
	})

	t.Run("unknown interwiki", func(t *testing.T) {
		tree := parse(t, "Home", "Unknown:thing")
		for _, id := range tree.Descendants(tree.Root()) {
			assert.NotEqual(t, pagetree.Interwikilink, tree.Kind(id))
		}
		assert.Equal(t, "Unknown:thing ", textOf(tree, tree.Root()))
	})

	t.Run("email", func(t *testing.T) {
		tree := parse(t, "Home", "mail me@example.com")
		n := firstOf(t, tree, pagetree.Link)
		assert.Equal(t, "mailto:me@example.com", n.URL)
		assert.Equal(t, "mailto", n.Link.Class)
	})

	t.Run("self reference is text", func(t *testing.T) {
		tree := parse(t, "FrontPage", "this FrontPage here")
		for _, id := range tree.Descendants(tree.Root()) {
			assert.NotEqual(t, pagetree.Pagelink, tree.Kind(id))
		}
	})
}

func TestParse_transclusions(t *testing.T) {
	t.Run("image", func(t *testing.T) {
		tree := parse(t, "Home", "{{https://example.com/a.png}}")
		n := firstOf(t, tree, pagetree.Image)
		assert.Equal(t, "https://example.com/a.png", n.URL)
		assert.Equal(t, "https://example.com/a.png", n.Image.Alt)
		assert.Empty(t, n.Image.Title)
	})

	t.Run("attached image", func(t *testing.T) {
		tree := parse(t, "Home", "{{attachment:pic.png|a picture|width=100, bogus=1}}")
		n := firstOf(t, tree, pagetree.AttachmentImage)
		assert.Equal(t, "Home", n.PageName)
		assert.Equal(t, "pic.png", n.FileName)
		assert.Equal(t, pagetree.ImageAttr{Alt: "a picture", Width: "100"}, n.Image)
	})

	t.Run("attached text", func(t *testing.T) {
		tree := parse(t, "Home", "{{attachment:notes.txt}} {{attachment:main.py}}")
		var files []string
		for _, id := range tree.Descendants(tree.Root()) {
			if n := tree.Node(id); n.Kind == pagetree.AttachmentInlined {
				files = append(files, n.FileName+"="+n.LinkText)
			}
		}
		assert.Equal(t, []string{"notes.txt=notes.txt", "main.py=main.py"}, files)
	})

	t.Run("attached object", func(t *testing.T) {
		tree := parse(t, "Home", "{{attachment:movie.mp4|a movie}}")
		n := firstOf(t, tree, pagetree.AttachmentTransclude)
		assert.Equal(t, "movie.mp4", n.FileName)
		assert.Equal(t, "a movie", n.Object.Title)
	})

	t.Run("page", func(t *testing.T) {
		tree := parse(t, "Home", "{{OtherPage}}")
		n := firstOf(t, tree, pagetree.Transclude)
		assert.Equal(t, "OtherPage", n.PageName)
		assert.Equal(t, pagetree.ObjectAttr{MimeType: "text/html", Width: "100%"}, n.Object)
		assert.Equal(t, "OtherPage ", textOf(tree, tree.Root()))
	})

	t.Run("link description", func(t *testing.T) {
		tree := parse(t, "Home", "[[FrontPage|{{attachment:logo.png}}]]")
		link := firstOf(t, tree, pagetree.Pagelink)
		assert.Equal(t, "FrontPage", link.PageName)
		img := firstOf(t, tree, pagetree.AttachmentImage)
		assert.Equal(t, "logo.png", img.FileName)
	})
}

func TestParse_tableAttrs(t *testing.T) {
	tree := parse(t, "Home", "||<tablewidth=\"100%\" -2 :>a||\n||||b||c||\n")
	table := firstOf(t, tree, pagetree.Table)
	assert.Equal(t, pagetree.TableAttr{Width: "100%"}, table.Table)

	var cells []pagetree.TableCellAttr
	for _, id := range tree.Descendants(tree.Root()) {
		if n := tree.Node(id); n.Kind == pagetree.TableCell {
			cells = append(cells, n.Cell)
		}
	}
	assert.Equal(t, []pagetree.TableCellAttr{
		{ColSpan: 2, Align: "center"},
		{ColSpan: 2, Align: "center"},
		{},
	}, cells)
}

func TestParse_rule(t *testing.T) {
	tree := parse(t, "", "above\n----\nbelow\n")
	var kinds []pagetree.Kind
	for _, id := range tree.Children(tree.Root()) {
		kinds = append(kinds, tree.Kind(id))
	}
	assert.Equal(t, []pagetree.Kind{pagetree.Paragraph, pagetree.HorizontalRule, pagetree.Paragraph}, kinds)
}

func TestParse_unsupported(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	site := *testSite
	site.Logger = zap.New(core).Sugar()

	tree, err := Parse("[[drawing:sketch]]\n{{{#!nosuchparser\nx\n}}}\n", "Home", &site, false)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("unsupported markup").Len())
	assert.Equal(t, "x", firstOf(t, tree, pagetree.Codeblock).Content, "unknown parsers fall back to text")
}
