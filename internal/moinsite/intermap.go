package moinsite

import (
	"bufio"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ReadInterMap reads a MoinMoin intermap.txt file of "Name URL" lines into
// dst, skipping blank and comment lines. A missing file is not an error.
func ReadInterMap(fs afero.Fs, filename string, dst map[string]string) error {
	f, err := fs.Open(filename)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "unable to open intermap")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		dst[fields[0]] = fields[1]
	}
	return errors.Wrapf(sc.Err(), "unable to read intermap %q", filename)
}
