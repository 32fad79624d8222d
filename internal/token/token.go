package token

import "fmt"

// Pos is a 1-based position in a source file.
type Pos struct {
	Line   int
	Column int
}

// Span locates a node or diagnostic in a source file. The zero Span is
// "synthetic": it marks content produced by the lowering itself (for example
// an occurrence recorded because an inner parameter had to be renamed).
type Span struct {
	File  string
	Start Pos
	End   Pos
}

// IsSynthetic reports whether the span does not point into any source file.
func (s Span) IsSynthetic() bool {
	return s.File == "" && s.Start.Line == 0
}

func (s Span) String() string {
	if s.IsSynthetic() {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Start.Line, s.Start.Column)
}

// At is a convenience constructor for single-point spans, used heavily by
// tests and by parsers that do not track end positions.
func At(file string, line, column int) Span {
	return Span{File: file, Start: Pos{Line: line, Column: column}, End: Pos{Line: line, Column: column}}
}
