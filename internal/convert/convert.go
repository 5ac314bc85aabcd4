/* Package convert drives the conversion of a whole MoinMoin site into a Hugo
content tree.

Attachments are copied into their page bundles first, since inlined
attachments are read back from there while formatting. Pages are then
converted concurrently; every page gets its own parser and formatter state,
and a page that fails to convert is logged and skipped without stopping the
run.
*/
package convert

import (
	"context"
	"path"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/moin2hugo/internal/hugo"
	"github.com/jcorbin/moin2hugo/internal/mdformat"
	"github.com/jcorbin/moin2hugo/internal/moinparser"
	"github.com/jcorbin/moin2hugo/internal/moinsite"
	"github.com/jcorbin/moin2hugo/internal/pathbuilder"
)

// Options configure a site conversion.
type Options struct {
	Fs      afero.Fs // wiki source, the OS file system if nil
	DataDir string   // MoinMoin data directory
	Dest    string   // Hugo content directory
	BaseURL string
	Jobs    int // concurrency bound, 1 if less

	Strict bool
	Site   *moinparser.SiteConfig
	Format mdformat.Config
	Logger *zap.SugaredLogger
}

// Result counts what a conversion did.
type Result struct {
	Pages       int // converted
	Failed      int // skipped due to errors
	Attachments int // copied
}

// Page converts the MoinMoin text of the named page to Markdown.
func Page(text, pageName string, site *moinparser.SiteConfig, strict bool, cfg mdformat.Config, pb mdformat.PathBuilder) (string, error) {
	tree, err := moinparser.Parse(text, pageName, site, strict)
	if err != nil {
		return "", errors.Wrapf(err, "unable to parse %q", pageName)
	}
	md, err := mdformat.Format(tree, tree.Root(), pageName, cfg, pb)
	if err != nil {
		return "", errors.Wrapf(err, "unable to format %q", pageName)
	}
	return md, nil
}

type converter struct {
	Options
	scanner moinsite.Scanner
	pb      pathbuilder.Hugo
	w       hugo.Writer

	pages, failed, attachments atomic.Int64
}

// Site converts every live page of the wiki under opts.DataDir. It only
// fails if the site cannot be scanned, or ctx is done.
func Site(ctx context.Context, opts Options) (Result, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	opts.Format.Logger = opts.Logger
	opts.Site = withInterMap(opts)

	c := &converter{
		Options: opts,
		scanner: moinsite.Scanner{Fs: opts.Fs, DataDir: opts.DataDir, Logger: opts.Logger},
		pb:      pathbuilder.Hugo{Root: opts.Dest, BaseURL: opts.BaseURL},
	}
	pages, err := c.scanner.Scan()
	if err != nil {
		return Result{}, err
	}
	c.Logger.Infow("scanned site", "pages", len(pages))

	if err := c.each(ctx, pages, c.copyAttachments); err != nil {
		return c.result(), err
	}
	if err := c.each(ctx, pages, c.convertPage); err != nil {
		return c.result(), err
	}
	return c.result(), nil
}

// withInterMap returns the parser site settings, extended by any intermap
// file of the wiki; configured names take precedence.
func withInterMap(opts Options) *moinparser.SiteConfig {
	var site moinparser.SiteConfig
	if opts.Site != nil {
		site = *opts.Site
	}
	iw := make(map[string]string)
	if err := moinsite.ReadInterMap(opts.Fs, path.Join(opts.DataDir, "intermap.txt"), iw); err != nil {
		opts.Logger.Warnw("ignoring intermap", "error", err)
	}
	for name, prefix := range site.Interwiki {
		iw[name] = prefix
	}
	site.Interwiki = iw
	site.Logger = opts.Logger
	return &site
}

func (c *converter) result() Result {
	return Result{
		Pages:       int(c.pages.Load()),
		Failed:      int(c.failed.Load()),
		Attachments: int(c.attachments.Load()),
	}
}

// each runs fn for every page with bounded concurrency.
func (c *converter) each(ctx context.Context, pages []moinsite.Page, fn func(moinsite.Page)) error {
	// gctx is canceled once Wait returns, so only ctx may be checked after
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Jobs)
	for _, page := range pages {
		if gctx.Err() != nil {
			break
		}
		page := page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *converter) copyAttachments(page moinsite.Page) {
	for _, att := range page.Attachments {
		if err := c.copyAttachment(page, att); err != nil {
			c.Logger.Errorw("unable to copy attachment",
				"page", page.Name,
				"attachment", att.Name,
				"error", err)
			continue
		}
		c.attachments.Add(1)
	}
}

func (c *converter) copyAttachment(page moinsite.Page, att moinsite.Attachment) error {
	f, err := c.Fs.Open(att.Filepath)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.w.CopyFile(c.pb.AttachmentFilepath(page.Name, att.Name), f)
}

func (c *converter) convertPage(page moinsite.Page) {
	if err := c.writePage(page); err != nil {
		c.failed.Add(1)
		c.Logger.Errorw("unable to convert page", "page", page.Name, "error", err)
		return
	}
	c.pages.Add(1)
}

func (c *converter) writePage(page moinsite.Page) error {
	text, err := c.scanner.ReadPage(page)
	if err != nil {
		return err
	}
	md, err := Page(text, page.Name, c.Site, c.Strict, c.Format, c.pb)
	if err != nil {
		return err
	}
	return c.w.WritePage(c.pb.PageFilepath(page.Name), hugo.NewPage(page.Name, page.Updated, md))
}
