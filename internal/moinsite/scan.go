/* Package moinsite reads the page store of a MoinMoin 1.x data directory.

Each page lives in data/pages/<encoded name>/, where the "current" file
names the latest revision under revisions/, and attachments are plain files
under attachments/. Pages whose current revision file is missing have been
deleted.
*/
package moinsite

import (
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Attachment is a file attached to a page.
type Attachment struct {
	Name     string
	Filepath string
}

// Page is the latest revision of a wiki page.
type Page struct {
	Name        string
	Filepath    string // revision file holding the page text
	Attachments []Attachment
	Updated     time.Time
}

// Scanner lists the pages of a data directory.
type Scanner struct {
	Fs      afero.Fs
	DataDir string
	Logger  *zap.SugaredLogger
}

func (sc Scanner) log() *zap.SugaredLogger {
	if sc.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return sc.Logger
}

// Scan returns all live pages, sorted by name. Deleted pages, and page
// directories that cannot be read, are skipped with a log message.
func (sc Scanner) Scan() ([]Page, error) {
	pagesDir := path.Join(sc.DataDir, "pages")
	infos, err := afero.ReadDir(sc.Fs, pagesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list pages")
	}
	var pages []Page
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		name, err := DecodeName(info.Name())
		if err != nil {
			sc.log().Warnw("skipping page directory", "dir", info.Name(), "error", err)
			continue
		}
		page, ok, err := sc.readPage(path.Join(pagesDir, info.Name()), name)
		if err != nil {
			sc.log().Warnw("skipping unreadable page", "page", name, "error", err)
			continue
		}
		if !ok {
			sc.log().Debugw("skipping deleted page", "page", name)
			continue
		}
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })
	return pages, nil
}

func (sc Scanner) readPage(dir, name string) (page Page, ok bool, _ error) {
	current, err := afero.ReadFile(sc.Fs, path.Join(dir, "current"))
	if os.IsNotExist(err) {
		return page, false, nil
	} else if err != nil {
		return page, false, err
	}
	rev := strings.TrimSpace(string(current))
	if rev == "" || strings.ContainsAny(rev, `/\`) {
		return page, false, errors.Newf("invalid current revision %q", rev)
	}
	revPath := path.Join(dir, "revisions", rev)
	info, err := sc.Fs.Stat(revPath)
	if os.IsNotExist(err) {
		return page, false, nil
	} else if err != nil {
		return page, false, err
	}

	page = Page{Name: name, Filepath: revPath, Updated: info.ModTime()}
	attDir := path.Join(dir, "attachments")
	atts, err := afero.ReadDir(sc.Fs, attDir)
	if err != nil && !os.IsNotExist(err) {
		return page, false, err
	}
	for _, att := range atts {
		if att.Mode().IsRegular() {
			page.Attachments = append(page.Attachments, Attachment{
				Name:     att.Name(),
				Filepath: path.Join(attDir, att.Name()),
			})
		}
	}
	return page, true, nil
}

// ReadPage returns the text of a page revision.
func (sc Scanner) ReadPage(page Page) (string, error) {
	b, err := afero.ReadFile(sc.Fs, page.Filepath)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read page %q", page.Name)
	}
	return string(b), nil
}
