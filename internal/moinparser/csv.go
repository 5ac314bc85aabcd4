package moinparser

import (
	"encoding/csv"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// sniffDelimiters are the field delimiters tried, in order, when none is
// given.
var sniffDelimiters = []rune{',', '\t', ';', ' ', ':'}

// CSVExtension renders comma (or otherwise) separated values as a Table
// whose first row is the header.
type CSVExtension struct{}

// Name returns "csv".
func (CSVExtension) Name() string { return "csv" }

// Aliases returns nothing.
func (CSVExtension) Aliases() []string { return nil }

// Suffixes returns ".csv".
func (CSVExtension) Suffixes() []string { return []string{".csv"} }

// csvOptions holds the parsed csv parser arguments.
type csvOptions struct {
	delimiter  rune
	quoteChar  rune // 0 means no quoting
	show       []string
	hide       []string
	hideIndex  []int
	autofilter []string
	name       string
	staticCols []string
	staticVals []string
	link       []string
}

func parseCSVArgs(args string) (opts csvOptions, err error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return opts, nil
	}
	r := csv.NewReader(strings.NewReader(args))
	r.Comma = ' '
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return opts, errors.Wrapf(err, "invalid csv arguments %q", args)
	}
	for _, arg := range fields {
		key, val, isKV := strings.Cut(arg, "=")
		if !isKV {
			if strings.HasPrefix(arg, "-") {
				if n, err := strconv.Atoi(arg[1:]); err == nil {
					opts.hideIndex = append(opts.hideIndex, n-1)
				}
			} else if arg != "" {
				opts.delimiter, _ = utf8.DecodeRuneInString(arg)
			}
			continue
		}
		switch key {
		case "separator", "delimiter":
			opts.delimiter, _ = utf8.DecodeRuneInString(val)
		case "quotechar":
			opts.quoteChar, _ = utf8.DecodeRuneInString(val)
		case "show":
			opts.show = strings.Split(val, ",")
		case "hide":
			opts.hide = strings.Split(val, ",")
		case "autofilter":
			opts.autofilter = strings.Split(val, ",")
		case "name":
			opts.name = val
		case "static_cols":
			opts.staticCols = strings.Split(val, ",")
		case "static_vals":
			opts.staticVals = strings.Split(val, ",")
		case "link":
			opts.link = strings.Split(val, ",")
		}
	}
	switch {
	case len(opts.staticCols) > len(opts.staticVals):
		opts.staticVals = append(opts.staticVals, make([]string, len(opts.staticCols)-len(opts.staticVals))...)
	case len(opts.staticCols) < len(opts.staticVals):
		opts.staticVals = opts.staticVals[:len(opts.staticCols)]
	}
	return opts, nil
}

// sniffDelimiter picks the first preferred delimiter present in the first
// line, falling back to ";".
func sniffDelimiter(line string) rune {
	for _, d := range sniffDelimiters {
		if strings.ContainsRune(line, d) {
			return d
		}
	}
	return ';'
}

// readCSV splits lines into records; blank lines are skipped.
func readCSV(lines []string, opts csvOptions) ([][]string, error) {
	var records [][]string
	if opts.quoteChar == 0 {
		for _, line := range lines {
			if line == "" {
				continue
			}
			records = append(records, strings.Split(line, string(opts.delimiter)))
		}
		return records, nil
	}

	text := strings.Join(lines, "\n")
	if opts.quoteChar != '"' {
		text = strings.ReplaceAll(text, string(opts.quoteChar), `"`)
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = opts.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	return records, errors.Wrap(err, "invalid csv data")
}

// Parse returns a Table of the csv text.
func (CSVExtension) Parse(t *pagetree.Tree, text, _, args string) (pagetree.ID, error) {
	opts, err := parseCSVArgs(args)
	if err != nil {
		return pagetree.None, err
	}
	// a blank first line means there is no header row
	lines := strings.Split(text, "\n")
	showHeader := strings.TrimSpace(lines[0]) != ""
	if !showHeader {
		lines = lines[1:]
	}
	if opts.delimiter == 0 {
		first := ""
		if len(lines) > 0 {
			first = lines[0]
		}
		opts.delimiter = sniffDelimiter(first)
	}
	if opts.delimiter == '"' || opts.delimiter == '\n' || opts.delimiter == '\r' {
		return pagetree.None, errors.Newf("invalid csv delimiter %q", opts.delimiter)
	}
	records, err := readCSV(lines, opts)
	if err != nil {
		return pagetree.None, err
	}

	table := t.Add(pagetree.Fields{Kind: pagetree.Table}, "")
	if len(records) == 0 {
		return table, nil
	}

	var cols []string
	rows := records
	if showHeader {
		cols = append(append(cols, records[0]...), opts.staticCols...)
		rows = records[1:]
	} else {
		cols = append(make([]string, len(records[0])), opts.staticCols...)
	}
	numEntryCols := len(cols) - len(opts.staticCols)

	hidden := make([]bool, len(cols))
	isLink := make([]bool, len(cols))
	for i, col := range cols {
		hidden[i] = containsString(opts.hide, col) ||
			containsInt(opts.hideIndex, i) ||
			(opts.show != nil && !containsString(opts.show, col))
		isLink[i] = containsString(opts.link, col)
	}

	addRow := func(values []string, header bool) {
		row := t.Add(pagetree.Fields{Kind: pagetree.TableRow, IsHeader: header}, "")
		t.AppendChild(table, row)
		for i, val := range values {
			if hidden[i] {
				continue
			}
			cell := t.Add(pagetree.Fields{Kind: pagetree.TableCell}, "")
			t.AppendChild(row, cell)
			if header || !isLink[i] {
				t.AppendChild(cell, t.Add(pagetree.Fields{Kind: pagetree.Text, Content: val}, val))
				continue
			}
			url, desc, hasURL := strings.Cut(val, " ")
			if !hasURL || url == "" {
				t.AppendChild(cell, t.Add(pagetree.Fields{Kind: pagetree.Text, Content: strings.TrimSpace(val)}, val))
				continue
			}
			link := t.Add(pagetree.Fields{Kind: pagetree.Link, URL: url}, val)
			t.AppendChild(cell, link)
			t.Freeze(link)
			t.AppendChild(link, t.Add(pagetree.Fields{Kind: pagetree.Text, Content: desc}, desc))
		}
	}

	if showHeader {
		addRow(cols, true)
	}
	for _, rec := range rows {
		if len(rec) == 0 {
			continue
		}
		values := make([]string, numEntryCols, len(cols))
		copy(values, rec)
		addRow(append(values, opts.staticVals...), false)
	}
	return table, nil
}

func containsInt(ns []int, n int) bool {
	for _, m := range ns {
		if m == n {
			return true
		}
	}
	return false
}
