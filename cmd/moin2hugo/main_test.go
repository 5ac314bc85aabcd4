package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/moin2hugo/internal/hugo"
	"github.com/jcorbin/moin2hugo/internal/moinparser"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	return runCLIOn(t, afero.NewOsFs(), stdin, args...)
}

func runCLIOn(t *testing.T, fs afero.Fs, stdin string, args ...string) (string, error) {
	cmd := makeRootCommandOn(fs)
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPageCommand(t *testing.T) {
	out, err := runCLI(t, "= T =\nsee [[Other]]\n", "page", "--name", "Home")
	require.NoError(t, err)
	assert.Equal(t, "## T\n\nsee [Other](/Other)\n", out)

	out, err = runCLI(t, "= T =\n", "page", "--no-increment-headings")
	require.NoError(t, err)
	assert.Equal(t, "# T\n\n", out)

	out, err = runCLI(t, "= T =\n", "page", "--base-url", "/wiki", "--name", "A")
	require.NoError(t, err)
	assert.Equal(t, "## T\n\n", out)
}

func TestPageCommand_config(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "moin2hugo.toml")
	require.NoError(t, os.WriteFile(filename, []byte("[formatter]\nallow_emoji = true\n"), 0o644))

	out, err := runCLI(t, "ok :) fine\n", "page", "--config", filename)
	require.NoError(t, err)
	assert.Equal(t, "ok :simple_smile: fine\n", out)

	out, err = runCLI(t, "ok :) fine\n", "page", "--config", filename, "--emoji=false")
	require.NoError(t, err)
	assert.Equal(t, `ok \:) fine`+"\n", out, "flags override the file")
}

func TestDumpCommand(t *testing.T) {
	out, err := runCLI(t, "= T =\ntext\n", "dump")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"1. Heading depth=1\n"+
		"     Text content=\"T\"\n"+
		"2. Paragraph\n"+
		"     Text content=\"text \"\n", out)

	out, err = runCLI(t, "text\n", "dump", "--source")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"1. Paragraph\n"+
		"     Text content=\"text \"\n"+
		"   ```moin\n"+
		"   text\n"+
		"   ```\n", out)

	_, err = runCLI(t, "'''open\n", "dump", "--strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, moinparser.ErrStructure))
}

func TestConvertCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/wiki/data/pages/FrontPage/current":                   "00000001\n",
		"/wiki/data/pages/FrontPage/revisions/00000001":        "= Hello =\nsee [[FrontPage/Sub|the sub page]]\n",
		"/wiki/data/pages/FrontPage/attachments/notes.txt":     "some notes\n",
		"/wiki/data/pages/FrontPage(2f)Sub/current":            "00000001\n",
		"/wiki/data/pages/FrontPage(2f)Sub/revisions/00000001": "back to [[FrontPage]]\n",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	dest := t.TempDir()
	_, err := runCLIOn(t, fs, "", "convert", "/wiki/data", dest, "--jobs", "2")
	require.NoError(t, err)

	readPage := func(name string) hugo.Page {
		b, err := os.ReadFile(filepath.Join(dest, name, "_index.md"))
		require.NoError(t, err)
		page, err := hugo.ParsePage(b)
		require.NoError(t, err)
		return page
	}
	front := readPage("FrontPage")
	assert.Equal(t, "FrontPage", front.Title)
	assert.Equal(t, "## Hello\n\nsee [the sub page](Sub)\n", front.Body)
	sub := readPage(filepath.Join("FrontPage", "Sub"))
	assert.Equal(t, "FrontPage/Sub", sub.WikiName)
	assert.Equal(t, "back to [FrontPage](/FrontPage)\n", sub.Body)

	b, err := os.ReadFile(filepath.Join(dest, "FrontPage", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "some notes\n", string(b))
}

func TestConvertCommand_args(t *testing.T) {
	_, err := runCLI(t, "", "convert", "only-one")
	assert.Error(t, err)
}
