// Command moin2hugo converts MoinMoin 1.x wiki pages into Markdown content
// for the Hugo static site generator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcorbin/moin2hugo/internal/siteconfig"
)

func main() {
	if err := makeRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "moin2hugo: %v\n", err)
		os.Exit(1)
	}
}

// globals are the settings shared by all subcommands.
type globals struct {
	configFile string
	verbose    bool

	cfg siteconfig.Config
	log *zap.SugaredLogger

	// fs holds the wiki data directory read by convert.
	fs afero.Fs
}

func makeRootCommand() *cobra.Command {
	return makeRootCommandOn(afero.NewOsFs())
}

// makeRootCommandOn is like makeRootCommand, but reads wiki data from fs.
func makeRootCommandOn(fs afero.Fs) *cobra.Command {
	g := globals{fs: fs}
	command := &cobra.Command{
		Use:   "moin2hugo [command] (flags)",
		Short: "moin2hugo converts MoinMoin wiki pages into Hugo Markdown content.",
		Long: `moin2hugo converts MoinMoin wiki pages into Hugo Markdown content.

Typical usage:
    moin2hugo convert /srv/wiki/data site/content --jobs=8
        Convert every page of a wiki, and copy its attachments, into page bundles.

    moin2hugo page --name=FrontPage < page.txt
        Convert a single page of MoinMoin text to Markdown on stdout.

    moin2hugo dump < page.txt
        Print the document tree parsed from MoinMoin text.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
	}
	command.PersistentFlags().StringVar(&g.configFile, "config", "", "TOML configuration file")
	command.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")

	command.AddCommand(makeConvertCommand(&g))
	command.AddCommand(makePageCommand(&g))
	command.AddCommand(makeDumpCommand(&g))
	return command
}

func (g *globals) setup() error {
	var (
		logger *zap.Logger
		err    error
	)
	if g.verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	g.log = logger.Sugar()

	g.cfg = siteconfig.Default()
	if g.configFile != "" {
		cfg, unknown, err := siteconfig.Load(g.configFile)
		if err != nil {
			return err
		}
		for _, key := range unknown {
			g.log.Warnw("unknown config key", "file", g.configFile, "key", key)
		}
		g.cfg = cfg
	}
	return nil
}
