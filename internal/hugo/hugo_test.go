package hugo

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_WriteTo(t *testing.T) {
	page := NewPage("Foo/Bar", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), "body\n")
	var buf bytes.Buffer
	n, err := page.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, ""+
		"---\n"+
		"title: Bar\n"+
		"date: 2020-01-02T03:04:05Z\n"+
		"wikiname: Foo/Bar\n"+
		"---\n"+
		"\n"+
		"body\n", buf.String())

	back, err := ParsePage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, page.Title, back.Title)
	assert.True(t, page.Date.Equal(back.Date))
	assert.Equal(t, page.Body, back.Body)
}

func TestPage_noDate(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewPage("Solo", time.Time{}, "x").WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "date:")
}

func TestParsePage_invalid(t *testing.T) {
	for _, in := range []string{"no front matter", "---\ntitle: x\n", "---\n: [\n---\n"} {
		_, err := ParsePage([]byte(in))
		assert.Error(t, err, "ParsePage(%q)", in)
	}
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	var w Writer

	filename := filepath.Join(dir, "A", "B", "_index.md")
	require.NoError(t, w.WritePage(filename, NewPage("A/B", time.Time{}, "one\n")))
	require.NoError(t, w.WritePage(filename, NewPage("A/B", time.Time{}, "two\n")))
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "\ntwo\n"), "replaced content, got %q", b)

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	att := filepath.Join(dir, "A", "data.csv")
	require.NoError(t, w.CopyFile(att, strings.NewReader("a;b\n")))
	b, err = os.ReadFile(att)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n", string(b))
}

type failingWriterTo struct{}

var errBoom = errors.New("boom")

func (failingWriterTo) WriteTo(w io.Writer) (int64, error) {
	io.WriteString(w, "partial")
	return 0, errBoom
}

func TestWriter_failureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "page.md")
	err := Writer{}.write(filename, failingWriterTo{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	_, err = os.Stat(filename)
	assert.True(t, os.IsNotExist(err))
}
