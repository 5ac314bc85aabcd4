package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jcorbin/moin2hugo/internal/hugo"
	"github.com/jcorbin/moin2hugo/internal/mdformat"
	"github.com/jcorbin/moin2hugo/internal/moinsite"
)

func addPage(t *testing.T, fs afero.Fs, name, text string, attachments map[string]string) {
	dir := filepath.Join("/data/pages", moinsite.EncodeName(name))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "current"), []byte("00000001\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "revisions", "00000001"), []byte(text), 0o644))
	for file, content := range attachments {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "attachments", file), []byte(content), 0o644))
	}
}

func readPage(t *testing.T, filename string) hugo.Page {
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	page, err := hugo.ParsePage(b)
	require.NoError(t, err)
	return page
}

func TestSite(t *testing.T) {
	fs := afero.NewMemMapFs()
	addPage(t, fs, "FrontPage", "= Welcome =\nSee [[FrontPage/Sub|the sub page]].\n\n{{attachment:data.csv}}\n",
		map[string]string{"data.csv": "a;b\n1;2\n"})
	addPage(t, fs, "FrontPage/Sub", "Back to [[FrontPage]] or MoinMoin:HelpContents.\n", nil)
	addPage(t, fs, "Broken", "'''never closed\n", nil)
	require.NoError(t, afero.WriteFile(fs, "/data/intermap.txt", []byte("MoinMoin http://moinmo.in/\n"), 0o644))

	core, logs := observer.New(zapcore.InfoLevel)
	dest := t.TempDir()
	res, err := Site(context.Background(), Options{
		Fs:      fs,
		DataDir: "/data",
		Dest:    dest,
		Jobs:    2,
		Strict:  true,
		Format:  mdformat.DefaultConfig(),
		Logger:  zap.New(core).Sugar(),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Pages: 2, Failed: 1, Attachments: 1}, res)

	front := readPage(t, filepath.Join(dest, "FrontPage", "_index.md"))
	assert.Equal(t, "FrontPage", front.Title)
	assert.Equal(t, ""+
		"## Welcome\n"+
		"\n"+
		"See [the sub page](Sub).\n"+
		"\n"+
		"| a | b |\n"+
		"| --- | --- |\n"+
		"| 1 | 2 |\n"+
		"\n"+
		"[data.csv](data.csv)\n", front.Body)

	sub := readPage(t, filepath.Join(dest, "FrontPage", "Sub", "_index.md"))
	assert.Equal(t, "Sub", sub.Title)
	assert.Equal(t, "FrontPage/Sub", sub.WikiName)
	assert.Equal(t, "Back to [FrontPage](/FrontPage) or MoinMoin:HelpContents.\n", sub.Body)

	_, err = os.Stat(filepath.Join(dest, "Broken", "_index.md"))
	assert.True(t, os.IsNotExist(err), "failed page is not written")

	failures := logs.FilterMessage("unable to convert page").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "Broken", failures[0].ContextMap()["page"])
	assert.Equal(t, 1, logs.FilterMessage("unsupported markup").Len(), "interwiki link known from intermap")
}

func TestSite_canceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	addPage(t, fs, "A", "a\n", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Site(ctx, Options{Fs: fs, DataDir: "/data", Dest: t.TempDir(), Format: mdformat.DefaultConfig()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSite_noData(t *testing.T) {
	_, err := Site(context.Background(), Options{Fs: afero.NewMemMapFs(), DataDir: "/data", Dest: t.TempDir()})
	assert.Error(t, err)
}
