// Package hugo renders converted pages as Hugo content files, and writes
// them into a content tree.
package hugo

import (
	"bytes"
	"io"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/jcorbin/moin2hugo/internal/mdutil"
)

// FrontMatter is the YAML metadata block of a content file.
type FrontMatter struct {
	Title    string    `yaml:"title"`
	Date     time.Time `yaml:"date,omitempty"`
	WikiName string    `yaml:"wikiname,omitempty"` // original page name
}

// Page is a content file: front matter followed by a Markdown body.
type Page struct {
	FrontMatter
	Body string
}

// NewPage returns the content page of a wiki page, titled by the last
// segment of its name.
func NewPage(pageName string, updated time.Time, body string) Page {
	return Page{
		FrontMatter: FrontMatter{
			Title:    path.Base(pageName),
			Date:     updated.UTC(),
			WikiName: pageName,
		},
		Body: body,
	}
}

// WriteTo writes the page in Hugo content file form.
func (p Page) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p.FrontMatter); err != nil {
		return 0, errors.Wrap(err, "unable to encode front matter")
	}
	if err := enc.Close(); err != nil {
		return 0, errors.Wrap(err, "unable to encode front matter")
	}
	buf.WriteString("---\n\n")
	buf.WriteString(p.Body)

	ew := mdutil.ErrWriter{Writer: w}
	n, _ := buf.WriteTo(&ew)
	return n, ew.Err
}

// ParsePage splits a content file back into front matter and body.
func ParsePage(content []byte) (Page, error) {
	var p Page
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return p, errors.New("missing front matter")
	}
	fm, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return p, errors.New("unterminated front matter")
	}
	if err := yaml.Unmarshal(fm, &p.FrontMatter); err != nil {
		return p, errors.Wrap(err, "invalid front matter")
	}
	p.Body = string(bytes.TrimPrefix(body, []byte("\n")))
	return p, nil
}
