package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jcorbin/moin2hugo/internal/convert"
	"github.com/jcorbin/moin2hugo/internal/siteconfig"
)

// formatFlags binds formatter and parser flags that override configuration
// file values when given.
type formatFlags struct {
	strict       bool
	emoji        bool
	noRawHTML    bool
	noIncrement  bool
	noHeuristic  bool
	extendedTabs bool
	baseURL      string
}

func (ff *formatFlags) register(flags *pflag.FlagSet) {
	flags.BoolVar(&ff.strict, "strict", false, "fail pages with malformed markup")
	flags.BoolVar(&ff.emoji, "emoji", false, "render smileys as emoji shortcodes")
	flags.BoolVar(&ff.noRawHTML, "no-raw-html", false, "never emit raw HTML")
	flags.BoolVar(&ff.noIncrement, "no-increment-headings", false, "keep MoinMoin heading levels")
	flags.BoolVar(&ff.noHeuristic, "no-header-heuristic", false, "never promote emphasized first table rows to headers")
	flags.BoolVar(&ff.extendedTabs, "extended-tables", false, "emit extended-markdown-table span markers")
	flags.StringVar(&ff.baseURL, "base-url", "", "URL path of the content root")
}

func (ff *formatFlags) apply(flags *pflag.FlagSet, cfg *siteconfig.Config) {
	set := func(name string, dst *bool, val bool) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	set("strict", &cfg.Parser.Strict, ff.strict)
	set("emoji", &cfg.Formatter.AllowEmoji, ff.emoji)
	set("no-raw-html", &cfg.Formatter.AllowRawHTML, !ff.noRawHTML)
	set("no-increment-headings", &cfg.Formatter.IncrementHeadingLevel, !ff.noIncrement)
	set("no-header-heuristic", &cfg.Formatter.DetectTableHeaderHeuristically, !ff.noHeuristic)
	set("extended-tables", &cfg.Formatter.UseExtendedMarkdownTable, ff.extendedTabs)
	if flags.Changed("base-url") {
		cfg.Site.BaseURL = ff.baseURL
	}
}

func makeConvertCommand(g *globals) *cobra.Command {
	var (
		ff   formatFlags
		jobs int
	)
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		ff.apply(cmd.Flags(), &g.cfg)
		if cmd.Flags().Changed("jobs") {
			g.cfg.Site.Jobs = jobs
		}
		fc := g.cfg.FormatConfig()
		res, err := convert.Site(cmd.Context(), convert.Options{
			Fs:      g.fs,
			DataDir: args[0],
			Dest:    args[1],
			BaseURL: g.cfg.Site.BaseURL,
			Jobs:    g.cfg.Site.Jobs,
			Strict:  g.cfg.Parser.Strict,
			Site:    g.cfg.SiteConfig(),
			Format:  fc,
			Logger:  g.log,
		})
		g.log.Infow("conversion done",
			"pages", res.Pages,
			"failed", res.Failed,
			"attachments", res.Attachments)
		return err
	}
	cmd := &cobra.Command{
		Use:   "convert <datadir> <contentdir>",
		Short: "Convert a whole MoinMoin data directory into a Hugo content directory.",
		Args:  cobra.ExactArgs(2),
		RunE:  runCmdFunc,
	}
	ff.register(cmd.Flags())
	cmd.Flags().IntVar(&jobs, "jobs", 0, "how many pages to convert concurrently")
	return cmd
}
