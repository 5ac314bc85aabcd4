package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jcorbin/moin2hugo/internal/convert"
	"github.com/jcorbin/moin2hugo/internal/pathbuilder"
)

func makePageCommand(g *globals) *cobra.Command {
	var (
		ff       formatFlags
		pageName string
		root     string
	)
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		ff.apply(cmd.Flags(), &g.cfg)
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		fc := g.cfg.FormatConfig()
		fc.Logger = g.log
		site := g.cfg.SiteConfig()
		site.Logger = g.log
		pb := pathbuilder.Hugo{Root: root, BaseURL: g.cfg.Site.BaseURL}
		md, err := convert.Page(string(text), pageName, site, g.cfg.Parser.Strict, fc, pb)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), md)
		return err
	}
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Convert MoinMoin text from stdin to Markdown on stdout.",
		Args:  cobra.NoArgs,
		RunE:  runCmdFunc,
	}
	ff.register(cmd.Flags())
	cmd.Flags().StringVar(&pageName, "name", "FrontPage", "page name, for resolving relative links")
	cmd.Flags().StringVar(&root, "content", ".", "content directory holding attachments to inline")
	return cmd
}
