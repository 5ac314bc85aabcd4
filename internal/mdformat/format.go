/* Package mdformat renders a pagetree as Markdown for the Hugo site
generator: CommonMark with GitHub tables, definition lists, and optional raw
HTML for elements that Markdown cannot express.

Formatting walks the tree recursively. Output decisions that depend on
what was emitted before an element (line starts, block separation, emphasis
flanking) look back at the formatted output of preceding siblings, which is
memoized per node ID for the duration of one Format call.
*/
package mdformat

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jcorbin/moin2hugo/internal/moinparser"
	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// Config holds formatter options.
type Config struct {
	// DetectTableHeaderHeuristically promotes a table's first row to be its
	// header when all of its cells are emphasized, or when it is styled.
	DetectTableHeaderHeuristically bool

	// IncrementHeadingLevel shifts headings down by one, since Hugo renders
	// the page title as the top level heading.
	IncrementHeadingLevel bool

	// AllowRawHTML enables HTML output for elements with no Markdown form;
	// otherwise their source text is emitted.
	AllowRawHTML bool

	// AllowEmoji enables :emoji: shortcodes for smileys.
	AllowEmoji bool

	// UseExtendedMarkdownTable emits cell span markers, and wraps tables in
	// the extended-markdown-table shortcode.
	UseExtendedMarkdownTable bool

	// Logger receives warnings about unsupported markup; nil disables
	// logging.
	Logger *zap.SugaredLogger

	// Fs is used to read inlined attachments; nil means the OS file system.
	Fs afero.Fs

	// Extensions resolves parsers for inlined attachments; nil means
	// moinparser.DefaultRegistry.
	Extensions *moinparser.Registry
}

// DefaultConfig returns the default formatter options.
func DefaultConfig() Config {
	return Config{
		DetectTableHeaderHeuristically: true,
		IncrementHeadingLevel:          true,
		AllowRawHTML:                   true,
	}
}

// PathBuilder maps wiki pages and attachments to output URLs and files.
type PathBuilder interface {
	// PageURL returns the URL of a page, relative to relativeBase when that
	// is shorter.
	PageURL(pageName, relativeBase string) string

	// AttachmentURL returns the URL of a page attachment.
	AttachmentURL(pageName, fileName, relativeBase string) string

	// PageFilepath returns the output file path of a page.
	PageFilepath(pageName string) string

	// AttachmentFilepath returns the file path of a page attachment.
	AttachmentFilepath(pageName, fileName string) string
}

// ErrAttachment marks failures to read an inlined attachment.
var ErrAttachment = errors.New("attachment unavailable")

// Format renders the subtree at id of the named page. The tree is not
// modified.
func Format(t *pagetree.Tree, id pagetree.ID, pageName string, cfg Config, pb PathBuilder) (string, error) {
	f := newFormatter(t.Clone(), pageName, cfg, pb)
	Consolidate(f.t, id)
	f.prepareTables(id)
	out := f.format(id)
	if f.err != nil {
		return "", f.err
	}
	return out, nil
}

type formatter struct {
	t        *pagetree.Tree
	cfg      Config
	pb       PathBuilder
	pageName string
	log      *zap.SugaredLogger
	fs       afero.Fs
	exts     *moinparser.Registry

	memo  map[pagetree.ID]string
	stubs map[pagetree.ID]bool // table cells added by span expansion
	err   error                // first fatal error
}

func newFormatter(t *pagetree.Tree, pageName string, cfg Config, pb PathBuilder) *formatter {
	f := &formatter{
		t:        t,
		cfg:      cfg,
		pb:       pb,
		pageName: pageName,
		log:      cfg.Logger,
		fs:       cfg.Fs,
		exts:     cfg.Extensions,
		memo:     make(map[pagetree.ID]string),
		stubs:    make(map[pagetree.ID]bool),
	}
	if f.log == nil {
		f.log = zap.NewNop().Sugar()
	}
	if f.fs == nil {
		f.fs = afero.NewOsFs()
	}
	if f.exts == nil {
		f.exts = moinparser.DefaultRegistry()
	}
	return f
}

func (f *formatter) format(id pagetree.ID) string {
	if out, ok := f.memo[id]; ok {
		return out
	}
	out := f.dispatch(id)
	f.memo[id] = out
	return out
}

func (f *formatter) dispatch(id pagetree.ID) string {
	n := f.t.Node(id)
	switch n.Kind {
	case pagetree.Paragraph:
		return f.block(id, strings.TrimSpace(f.children(id))+"\n")
	case pagetree.Heading:
		return f.heading(id)
	case pagetree.HorizontalRule:
		return f.block(id, mark{Type: rulerMark, Delim: '-', Width: 4}.String()+"\n")
	case pagetree.ParsedText:
		return f.block(id, f.children(id))
	case pagetree.Codeblock:
		return f.codeblock(n)
	case pagetree.Table:
		return f.block(id, f.table(id))
	case pagetree.BulletList, pagetree.NumberList:
		return f.block(id, f.list(id))
	case pagetree.DefinitionList:
		return f.block(id, f.definitionList(id))

	case pagetree.Text:
		return escapeText(n.Content, f.escapeOpts(id))
	case pagetree.Raw, pagetree.SGMLEntity:
		return n.Content
	case pagetree.Comment, pagetree.Remark:
		return ""
	case pagetree.Smiley:
		return f.smiley(id)
	case pagetree.Macro:
		return f.macro(id)

	case pagetree.Emphasis:
		return f.wrap(id, "*")
	case pagetree.Strong:
		return f.wrap(id, "**")
	case pagetree.Strike:
		return f.wrap(id, "~~")
	case pagetree.Underline:
		return f.rawElement(id, "u", nil)
	case pagetree.Big:
		return f.rawElement(id, "big", nil)
	case pagetree.Small:
		return f.rawElement(id, "small", nil)
	case pagetree.Sup:
		return f.rawContent(id, "sup")
	case pagetree.Sub:
		return f.rawContent(id, "sub")
	case pagetree.Code:
		return f.code(id)

	case pagetree.Link, pagetree.Pagelink, pagetree.AttachmentLink:
		return f.link(id)
	case pagetree.Interwikilink:
		return f.unsupported(id, "interwiki link")
	case pagetree.URL:
		return f.url(n)
	case pagetree.Image, pagetree.AttachmentImage:
		return f.image(id)
	case pagetree.Transclude, pagetree.AttachmentTransclude:
		return f.object(id)
	case pagetree.AttachmentInlined:
		return f.inlined(id)
	}
	return f.children(id)
}

// children concatenates the output of all children of id.
func (f *formatter) children(id pagetree.ID) string {
	var sb strings.Builder
	for _, kid := range f.t.Children(id) {
		sb.WriteString(f.format(kid))
	}
	return sb.String()
}

// container is like children, but drops trailing whitespace of inline runs
// that end a line, for list items, definitions, and table cells.
func (f *formatter) container(id pagetree.ID) string {
	var sb strings.Builder
	for _, kid := range f.t.Children(id) {
		out := f.format(kid)
		if f.t.Kind(kid).IsBlock() && out != "" {
			trimmed := strings.TrimRight(sb.String(), " \t")
			sb.Reset()
			sb.WriteString(trimmed)
		}
		sb.WriteString(out)
	}
	return strings.TrimRight(sb.String(), " \t\n")
}

// block prefixes the output of a block element with any separator needed
// after its preceding siblings.
func (f *formatter) block(id pagetree.ID, body string) string {
	if body == "" || body == "\n" {
		return ""
	}
	return f.separator(id) + body
}

// separator returns the newlines needed before the block element id: blocks
// are separated by one blank line, except for a list directly following the
// inline content of its list item.
func (f *formatter) separator(id pagetree.ID) string {
	prev, out := f.prevOutput(id)
	if prev == pagetree.None {
		return ""
	}
	if f.t.Kind(id).IsList() && !f.t.Kind(prev).IsBlock() {
		if strings.HasSuffix(out, "\n") {
			return ""
		}
		return "\n"
	}
	switch {
	case strings.HasSuffix(out, "\n\n"):
		return ""
	case strings.HasSuffix(out, "\n"):
		return "\n"
	}
	return "\n\n"
}

// prevOutput returns the closest preceding sibling with non-empty output.
func (f *formatter) prevOutput(id pagetree.ID) (pagetree.ID, string) {
	for prev := f.t.PrevSibling(id); prev != pagetree.None; prev = f.t.PrevSibling(prev) {
		if out := f.format(prev); out != "" {
			return prev, out
		}
	}
	return pagetree.None, ""
}

// atLineStart returns true if the output of id begins an output line.
func (f *formatter) atLineStart(id pagetree.ID) bool {
	if _, out := f.prevOutput(id); out != "" {
		return strings.HasSuffix(out, "\n")
	}
	switch f.t.Kind(f.t.Parent(id)) {
	case pagetree.PageRoot, pagetree.Paragraph, pagetree.Listitem,
		pagetree.DefinitionTerm, pagetree.DefinitionDesc, pagetree.TableCell:
		return true
	}
	return false
}

// prevRune returns the last rune output before id within its parent.
func (f *formatter) prevRune(id pagetree.ID) (rune, bool) {
	if _, out := f.prevOutput(id); out != "" {
		r, _ := utf8.DecodeLastRuneInString(out)
		return r, true
	}
	return 0, false
}

// nextRune returns the first rune of the text following id; only plain text
// siblings are considered, since later siblings have not been formatted yet.
func (f *formatter) nextRune(id pagetree.ID) (rune, bool) {
	next := f.t.NextSibling(id)
	if next == pagetree.None || f.t.Kind(next) != pagetree.Text {
		return 0, false
	}
	content := f.t.Node(next).Content
	if content == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(content)
	return r, true
}

func (f *formatter) inTable(id pagetree.ID) bool {
	return f.t.InX(id, pagetree.TableCell, pagetree.PageRoot)
}

func (f *formatter) escapeOpts(id pagetree.ID) escapeOptions {
	return escapeOptions{
		lineStart:  f.atLineStart(id),
		inTable:    f.inTable(id),
		allowEmoji: f.cfg.AllowEmoji,
	}
}

// escapedSource returns the MoinMoin source of id as literal text.
func (f *formatter) escapedSource(id pagetree.ID) string {
	return escapeText(f.t.Node(id).Source, f.escapeOpts(id))
}

// unsupported logs markup that has no Markdown rendering, which is then
// passed through as literal text.
func (f *formatter) unsupported(id pagetree.ID, what string) string {
	f.warn(id, "unsupported markup", what)
	return f.escapedSource(id)
}

func (f *formatter) warn(id pagetree.ID, msg, what string) {
	f.log.Warnw(msg,
		"page", f.pageName,
		"what", what,
		"markup", f.t.Node(id).Source)
}

func (f *formatter) heading(id pagetree.ID) string {
	depth := f.t.Node(id).Depth
	if f.cfg.IncrementHeadingLevel {
		depth++
	}
	if depth > 6 {
		depth = 6
	} else if depth < 1 {
		depth = 1
	}
	text := strings.TrimSpace(strings.ReplaceAll(f.children(id), "\n", " "))
	return f.block(id, mark{Type: headingMark, Delim: '#', Width: depth}.String()+text+"\n\n")
}

func (f *formatter) codeblock(n *pagetree.Node) string {
	fence := mark{Type: fenceMark, Delim: '`', Width: fenceWidth(n.Content, 3)}.String()
	content := n.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return fence + n.SyntaxID + "\n" + content + fence + "\n"
}
