package moinsite

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeName(t *testing.T) {
	for _, tc := range []struct{ in, out string }{
		{"FrontPage", "FrontPage"},
		{"Foo(2f)Bar(20)Baz", "Foo/Bar Baz"},
		{"(e38182)", "あ"},
		{"A(2e)B", "A.B"},
		{"(2e2e2e)", "..."},
		{"e(cc81)", "é"}, // NFC composes e + combining acute
	} {
		name, err := DecodeName(tc.in)
		if assert.NoError(t, err, "DecodeName(%q)", tc.in) {
			assert.Equal(t, tc.out, name, "DecodeName(%q)", tc.in)
		}
	}

	for _, in := range []string{"A(2", "A(zz)", "A()", "A(2)", "(ff)",
		"A(2f2f)B", "(2f)A", "A(2f)", "(2e)", "(2e2e)", "A(2f2e2e2f)B",
		"(2e2e2f2e2e2f6574632f)x",
	} {
		_, err := DecodeName(in)
		assert.True(t, errors.Is(err, ErrInvalidFileName), "DecodeName(%q) error %v", in, err)
	}
}

func TestEncodeName(t *testing.T) {
	for _, tc := range []struct{ in, out string }{
		{"FrontPage", "FrontPage"},
		{"Foo/Bar Baz", "Foo(2f)Bar(20)Baz"},
		{"a_b.c", "a_b(2e)c"},
		{"あい", "(e38182e38184)"},
	} {
		assert.Equal(t, tc.out, EncodeName(tc.in))
		name, err := DecodeName(tc.out)
		require.NoError(t, err)
		assert.Equal(t, tc.in, name)
	}
}

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
}

func TestScanner(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/pages/FrontPage/current", "00000002\n")
	writeFile(t, fs, "/data/pages/FrontPage/revisions/00000001", "old")
	writeFile(t, fs, "/data/pages/FrontPage/revisions/00000002", "= Front =")
	writeFile(t, fs, "/data/pages/FrontPage/attachments/b.png", "png")
	writeFile(t, fs, "/data/pages/FrontPage/attachments/a.csv", "a;b")
	writeFile(t, fs, "/data/pages/Foo(2f)Bar/current", "00000001")
	writeFile(t, fs, "/data/pages/Foo(2f)Bar/revisions/00000001", "sub page")
	writeFile(t, fs, "/data/pages/Gone/current", "00000003")
	writeFile(t, fs, "/data/pages/Gone/revisions/00000002", "deleted later")
	writeFile(t, fs, "/data/pages/Bad(zz)/current", "00000001")
	writeFile(t, fs, "/data/pages/(2e2e2f2e2e2f6574632f)x/current", "00000001")
	writeFile(t, fs, "/data/pages/(2e2e2f2e2e2f6574632f)x/revisions/00000001", "outside")
	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/data/pages/FrontPage/revisions/00000002", stamp, stamp))

	core, logs := observer.New(zapcore.DebugLevel)
	sc := Scanner{Fs: fs, DataDir: "/data", Logger: zap.New(core).Sugar()}
	pages, err := sc.Scan()
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "Foo/Bar", pages[0].Name)
	assert.Empty(t, pages[0].Attachments)

	front := pages[1]
	assert.Equal(t, "FrontPage", front.Name)
	assert.Equal(t, "/data/pages/FrontPage/revisions/00000002", front.Filepath)
	assert.True(t, stamp.Equal(front.Updated))
	assert.Equal(t, []Attachment{
		{Name: "a.csv", Filepath: "/data/pages/FrontPage/attachments/a.csv"},
		{Name: "b.png", Filepath: "/data/pages/FrontPage/attachments/b.png"},
	}, front.Attachments)

	text, err := sc.ReadPage(front)
	require.NoError(t, err)
	assert.Equal(t, "= Front =", text)

	assert.Equal(t, 2, logs.FilterMessage("skipping page directory").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping deleted page").Len())
}

func TestScanner_noPages(t *testing.T) {
	_, err := Scanner{Fs: afero.NewMemMapFs(), DataDir: "/nope"}.Scan()
	assert.Error(t, err)
}

func TestReadInterMap(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/intermap.txt", "# comment\n\nMoinMoin http://moinmo.in/\nWikiPedia https://en.wikipedia.org/wiki/ extra\nBroken\n")
	m := map[string]string{"Self": ""}
	require.NoError(t, ReadInterMap(fs, "/data/intermap.txt", m))
	assert.Equal(t, map[string]string{
		"Self":      "",
		"MoinMoin":  "http://moinmo.in/",
		"WikiPedia": "https://en.wikipedia.org/wiki/",
	}, m)
	assert.NoError(t, ReadInterMap(fs, "/data/missing.txt", m))
}
