package moinparser

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrStructure marks all errors raised by strict mode parsing.
var ErrStructure = errors.New("malformed page structure")

// StructuralError describes malformed markup found under strict mode.
type StructuralError struct {
	Line   int    // 1-based line number
	Source string // offending source line
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Source)
}

func structuralError(line int, source, reason string) error {
	return errors.Mark(&StructuralError{Line: line, Source: source, Reason: reason}, ErrStructure)
}
