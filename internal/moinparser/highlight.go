package moinparser

import (
	"strings"

	"github.com/jcorbin/moin2hugo/internal/pagetree"
)

// compatSyntax maps old MoinMoin parser names to highlight syntax ids.
var compatSyntax = map[string]string{
	"cplusplus": "cpp",
	"irssi":     "irc",
	"python":    "python",
	"java":      "java",
	"pascal":    "pascal",
	"fortran":   "fortran",
}

// suffixSyntax maps attachment file suffixes to highlight syntax ids.
var suffixSyntax = map[string]string{
	".py":    "python",
	".go":    "go",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".js":    "javascript",
	".sh":    "bash",
	".rb":    "ruby",
	".pl":    "perl",
	".pas":   "pascal",
	".f":     "fortran",
	".f90":   "fortran",
	".sql":   "sql",
	".xml":   "xml",
	".html":  "html",
	".css":   "css",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".diff":  "diff",
	".patch": "diff",
	".ini":   "ini",
	".php":   "php",
	".lua":   "lua",
	".tex":   "latex",
}

// HighlightExtension renders source code as a Codeblock tagged with a
// syntax id.
type HighlightExtension struct{}

// Name returns "highlight".
func (HighlightExtension) Name() string { return "highlight" }

// Aliases returns the old compatibility parser names.
func (HighlightExtension) Aliases() []string {
	names := make([]string, 0, len(compatSyntax))
	for name := range compatSyntax {
		names = append(names, name)
	}
	return names
}

// Suffixes returns all source code file suffixes.
func (HighlightExtension) Suffixes() []string {
	suffixes := make([]string, 0, len(suffixSyntax))
	for suffix := range suffixSyntax {
		suffixes = append(suffixes, suffix)
	}
	return suffixes
}

func (HighlightExtension) nameForSuffix(suffix string) string { return suffixSyntax[suffix] }

// Parse returns a Codeblock whose syntax id comes from the first argument
// under the "highlight" name; under any other name, the name itself selects
// the syntax, e.g. "#!python" or "#!cplusplus".
func (HighlightExtension) Parse(t *pagetree.Tree, text, name, args string) (pagetree.ID, error) {
	syntax := name
	if name == "highlight" {
		syntax = ""
		if fields := strings.Fields(args); len(fields) > 0 {
			syntax = fields[0]
		}
	}
	if mapped, ok := compatSyntax[syntax]; ok {
		syntax = mapped
	}
	return t.Add(pagetree.Fields{Kind: pagetree.Codeblock, Content: text, SyntaxID: syntax}, ""), nil
}
