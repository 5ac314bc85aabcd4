package siteconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Positive(t, cfg.Site.Jobs)
	fc := cfg.FormatConfig()
	assert.True(t, fc.DetectTableHeaderHeuristically)
	assert.True(t, fc.IncrementHeadingLevel)
	assert.True(t, fc.AllowRawHTML)
	assert.False(t, fc.AllowEmoji)
	assert.False(t, fc.UseExtendedMarkdownTable)
}

func TestDecode(t *testing.T) {
	cfg, unknown, err := Decode(`
[site]
jobs = 2
base_url = "/wiki/"
colour = "blue"

[parser]
strict = true
interwiki_name = "MyWiki"

[parser.interwiki]
MoinMoin = "http://moinmo.in/"

[formatter]
allow_emoji = true
increment_heading_level = false
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"site.colour"}, unknown)
	assert.Equal(t, 2, cfg.Site.Jobs)
	assert.Equal(t, "/wiki/", cfg.Site.BaseURL)
	assert.True(t, cfg.Parser.Strict)

	site := cfg.SiteConfig()
	assert.Equal(t, "MyWiki", site.InterwikiName)
	assert.Equal(t, map[string]string{"MoinMoin": "http://moinmo.in/"}, site.Interwiki)

	fc := cfg.FormatConfig()
	assert.True(t, fc.AllowEmoji)
	assert.False(t, fc.IncrementHeadingLevel)
	assert.True(t, fc.AllowRawHTML, "unset keys keep their default")
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "moin2hugo.toml")
	require.NoError(t, os.WriteFile(filename, []byte("[site]\njobs = 3\n"), 0o644))
	cfg, unknown, err := Load(filename)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, 3, cfg.Site.Jobs)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, _, err = Decode("[site\n")
	assert.Error(t, err)
}
