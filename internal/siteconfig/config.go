// Package siteconfig loads converter settings from a TOML file.
package siteconfig

import (
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/jcorbin/moin2hugo/internal/mdformat"
	"github.com/jcorbin/moin2hugo/internal/moinparser"
)

// Config is the whole converter configuration.
type Config struct {
	Site      Site      `toml:"site"`
	Parser    Parser    `toml:"parser"`
	Formatter Formatter `toml:"formatter"`
}

// Site configures the conversion run.
type Site struct {
	// Jobs bounds how many pages are converted concurrently.
	Jobs int `toml:"jobs"`

	// BaseURL is the URL path under which the content tree is served.
	BaseURL string `toml:"base_url"`
}

// Parser configures MoinMoin parsing.
type Parser struct {
	Strict        bool              `toml:"strict"`
	InterwikiName string            `toml:"interwiki_name"`
	Interwiki     map[string]string `toml:"interwiki"`
}

// Formatter configures Markdown output, see mdformat.Config.
type Formatter struct {
	DetectTableHeaderHeuristically bool `toml:"detect_table_header_heuristically"`
	IncrementHeadingLevel          bool `toml:"increment_heading_level"`
	AllowRawHTML                   bool `toml:"allow_raw_html"`
	AllowEmoji                     bool `toml:"allow_emoji"`
	UseExtendedMarkdownTable       bool `toml:"use_extended_markdown_table"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	fc := mdformat.DefaultConfig()
	return Config{
		Site: Site{Jobs: runtime.GOMAXPROCS(0), BaseURL: "/"},
		Formatter: Formatter{
			DetectTableHeaderHeuristically: fc.DetectTableHeaderHeuristically,
			IncrementHeadingLevel:          fc.IncrementHeadingLevel,
			AllowRawHTML:                   fc.AllowRawHTML,
			AllowEmoji:                     fc.AllowEmoji,
			UseExtendedMarkdownTable:       fc.UseExtendedMarkdownTable,
		},
	}
}

// Load decodes the TOML file at filename over the defaults, also returning
// any keys that it did not recognize.
func Load(filename string) (Config, []string, error) {
	cfg := Default()
	md, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		return cfg, nil, errors.Wrapf(err, "unable to load config %q", filename)
	}
	return cfg, undecoded(md), nil
}

// Decode is like Load, but reads TOML text.
func Decode(text string) (Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, nil, errors.Wrap(err, "unable to decode config")
	}
	return cfg, undecoded(md), nil
}

func undecoded(md toml.MetaData) []string {
	var keys []string
	for _, key := range md.Undecoded() {
		keys = append(keys, key.String())
	}
	return keys
}

// FormatConfig returns the formatter options.
func (c Config) FormatConfig() mdformat.Config {
	fc := mdformat.DefaultConfig()
	fc.DetectTableHeaderHeuristically = c.Formatter.DetectTableHeaderHeuristically
	fc.IncrementHeadingLevel = c.Formatter.IncrementHeadingLevel
	fc.AllowRawHTML = c.Formatter.AllowRawHTML
	fc.AllowEmoji = c.Formatter.AllowEmoji
	fc.UseExtendedMarkdownTable = c.Formatter.UseExtendedMarkdownTable
	return fc
}

// SiteConfig returns the parser site settings.
func (c Config) SiteConfig() *moinparser.SiteConfig {
	iw := make(map[string]string, len(c.Parser.Interwiki))
	for name, prefix := range c.Parser.Interwiki {
		iw[name] = prefix
	}
	return &moinparser.SiteConfig{
		InterwikiName: c.Parser.InterwikiName,
		Interwiki:     iw,
	}
}
