package hugo

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio"
)

// Writer writes content files, replacing each destination atomically so
// that a failed conversion never leaves a partial file behind.
type Writer struct {
	// Perm is the mode of written files, 0644 if zero.
	Perm os.FileMode
}

type cleanupWriteCloser interface {
	io.WriteCloser
	Cleanup() error
}

// pendingFile adapts a renameio pending file to write-then-close-or-cleanup
// usage: Close commits the content to its destination, Cleanup discards it
// unless already committed.
type pendingFile struct {
	*renameio.PendingFile
	closed bool
}

func (pf *pendingFile) Close() error {
	if pf.closed {
		return nil
	}
	err := pf.CloseAtomicallyReplace()
	pf.closed = err == nil
	return err
}

func (pf *pendingFile) Cleanup() error {
	if pf.closed {
		return nil
	}
	pf.closed = true
	return pf.PendingFile.Cleanup()
}

func (w Writer) create(filename string) (cleanupWriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, err
	}
	pf, err := renameio.TempFile("", filename)
	if err != nil {
		return nil, err
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := pf.Chmod(perm); err != nil {
		pf.Cleanup()
		return nil, err
	}
	return &pendingFile{PendingFile: pf}, nil
}

func (w Writer) write(filename string, from io.WriterTo) (rerr error) {
	f, err := w.create(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to create %q", filename)
	}
	defer func() {
		if cerr := f.Cleanup(); rerr == nil && cerr != nil {
			rerr = errors.Wrapf(cerr, "unable to clean up %q", filename)
		}
	}()
	if _, err := from.WriteTo(f); err != nil {
		return errors.Wrapf(err, "unable to write %q", filename)
	}
	return errors.Wrapf(f.Close(), "unable to commit %q", filename)
}

// WritePage writes a content page to filename.
func (w Writer) WritePage(filename string, page Page) error {
	return w.write(filename, page)
}

// CopyFile writes all of r to filename.
func (w Writer) CopyFile(filename string, r io.Reader) error {
	return w.write(filename, readerTo{r})
}

type readerTo struct{ io.Reader }

func (rt readerTo) WriteTo(w io.Writer) (int64, error) { return io.Copy(w, rt.Reader) }
