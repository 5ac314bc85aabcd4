package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcorbin/moin2hugo/internal/mdutil"
	"github.com/jcorbin/moin2hugo/internal/moinparser"
)

func makeDumpCommand(g *globals) *cobra.Command {
	var (
		pageName   string
		strict     bool
		withSource bool
	)
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		site := g.cfg.SiteConfig()
		site.Logger = g.log
		tree, err := moinparser.Parse(string(text), pageName, site, strict)
		if err != nil {
			return err
		}

		out := &mdutil.ErrWriter{Writer: cmd.OutOrStdout()}
		for n, id := range tree.Children(tree.Root()) {
			width, _ := fmt.Fprintf(out, "%v. ", n+1)
			itemOut := mdutil.NewPrefixWriter(strings.Repeat(" ", width), out)
			itemOut.Skip = true
			tree.Dump(itemOut, id, g.verbose)
			if src := tree.Node(id).Source; withSource && src != "" {
				fence := strings.Repeat("`", 3)
				for strings.Contains(src, fence) {
					fence += "`"
				}
				io.WriteString(itemOut, fence+"moin\n")
				io.WriteString(itemOut, strings.TrimSuffix(src, "\n")+"\n")
				io.WriteString(itemOut, fence+"\n")
			}
			itemOut.Close()
		}
		return out.Err
	}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the document tree parsed from MoinMoin text on stdin.",
		Args:  cobra.NoArgs,
		RunE:  runCmdFunc,
	}
	cmd.Flags().StringVar(&pageName, "name", "FrontPage", "page name, for resolving relative links")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed markup")
	cmd.Flags().BoolVar(&withSource, "source", false, "print the source text of each top level element")
	return cmd
}
