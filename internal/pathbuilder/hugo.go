/* Package pathbuilder maps wiki page and attachment names onto a Hugo
content tree.

Every page becomes a branch bundle, a directory holding an _index.md file,
so that sub pages nest as sections and attachments sit beside the page as
bundle resources. Hugo serves bundles with a trailing slash, so paths
relative to the current page resolve under it.
*/
package pathbuilder

import (
	"net/url"
	"path/filepath"
	"strings"
)

// IndexFile is the bundle file name of every page.
const IndexFile = "_index.md"

// Hugo builds paths for a content tree rooted at Root, served under BaseURL.
type Hugo struct {
	Root    string // content directory
	BaseURL string // URL path of the content root, "/" if empty
}

// PageURL returns the URL of a page. Pages under relativeBase get a URL
// relative to it; the base page itself gets an empty URL, so that anchors
// stay on the current page.
func (h Hugo) PageURL(pageName, relativeBase string) string {
	if relativeBase != "" {
		if pageName == relativeBase {
			return ""
		}
		if rel, ok := strings.CutPrefix(pageName, relativeBase+"/"); ok {
			return escapePath(rel)
		}
	}
	return h.absURL(pageName)
}

// AttachmentURL returns the URL of an attachment resource within its page
// bundle, relative to relativeBase as for PageURL.
func (h Hugo) AttachmentURL(pageName, fileName, relativeBase string) string {
	file := url.PathEscape(fileName)
	if relativeBase != "" {
		if pageName == relativeBase {
			return file
		}
		if rel, ok := strings.CutPrefix(pageName, relativeBase+"/"); ok {
			return escapePath(rel) + "/" + file
		}
	}
	return h.absURL(pageName) + "/" + file
}

// PageFilepath returns the bundle index file of a page.
func (h Hugo) PageFilepath(pageName string) string {
	return filepath.Join(h.bundleDir(pageName), IndexFile)
}

// AttachmentFilepath returns where an attachment is stored within its page
// bundle.
func (h Hugo) AttachmentFilepath(pageName, fileName string) string {
	return filepath.Join(h.bundleDir(pageName), filepath.Base(fileName))
}

// bundleDir drops empty and relative segments so that no page name resolves
// outside of Root.
func (h Hugo) bundleDir(pageName string) string {
	parts := []string{h.Root}
	for _, part := range strings.Split(pageName, "/") {
		switch part {
		case "", ".", "..":
		default:
			parts = append(parts, part)
		}
	}
	return filepath.Join(parts...)
}

func (h Hugo) absURL(pageName string) string {
	base := strings.TrimSuffix(h.BaseURL, "/")
	return base + "/" + escapePath(pageName)
}

// escapePath escapes each segment of a slash separated page name.
func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
