// Package mdutil provides small text plumbing shared by the MoinMoin parser
// and the Markdown formatter: line prefixing writers, and a quoted attribute
// token scanner.
package mdutil

import (
	"bytes"
	"io"
	"strings"
)

// WriteBuffer combines a byte buffer with a destination writer, flushing
// whole lines at a time. Example use:
//
// 	var buf WriteBuffer
// 	buf.To = os.Stdout
// 	for thing := range things {
// 		fmt.Fprint(&buf, thing)
// 		buf.MaybeFlush()
// 	}
// 	buf.Flush()
type WriteBuffer struct {
	To io.Writer
	bytes.Buffer
}

// Flush attempts to write all of the receiver buffer contents.
// Should be called after the main write phase.
func (buf *WriteBuffer) Flush() error {
	_, err := buf.WriteTo(buf.To)
	return err
}

// MaybeFlush writes all buffered bytes through the last written newline.
func (buf *WriteBuffer) MaybeFlush() error {
	b := buf.Bytes()
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		m, err := buf.To.Write(b[:i+1])
		buf.Next(m)
		return err
	}
	return nil
}

// ErrWriter wraps a writer, tracking its last error, and preventing future
// writes after a non-nil one.
type ErrWriter struct {
	io.Writer
	Err error
}

// Write passes through to Writer if Err is nil, retaining any returned error.
func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// PrefixWriter prepends Prefix before every non-empty line written through
// it. When Skip is set, the first line is passed through unprefixed, which is
// how list item bodies hang under their marker.
// The caller SHOULD Close it to flush any partial final line.
type PrefixWriter struct {
	Prefix string
	Skip   bool

	buf   WriteBuffer
	start bool
	began bool
}

// NewPrefixWriter returns a PrefixWriter writing to w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	pw := &PrefixWriter{Prefix: prefix}
	pw.buf.To = w
	return pw
}

// Close flushes any buffered partial line.
func (pw *PrefixWriter) Close() error { return pw.buf.Flush() }

// Write implements io.Writer.
func (pw *PrefixWriter) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line = b[:i+1]
		}
		b = b[len(line):]

		if !pw.began || pw.start {
			first := !pw.began
			pw.began = true
			if !(first && pw.Skip) && !(len(line) == 1 && line[0] == '\n') {
				pw.buf.WriteString(pw.Prefix)
			}
		}
		m, _ := pw.buf.Write(line)
		n += m
		pw.start = line[len(line)-1] == '\n'
	}
	return n, pw.buf.MaybeFlush()
}

// Indent returns s with prefix added to every non-empty line, except the
// first one when skipFirst is true.
func Indent(s, prefix string, skipFirst bool) string {
	var sb strings.Builder
	pw := NewPrefixWriter(prefix, &sb)
	pw.Skip = skipFirst
	io.WriteString(pw, s)
	pw.Close()
	return sb.String()
}
